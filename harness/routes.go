package harness

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skekre98/odsharness/admin"
	"github.com/skekre98/odsharness/core"
	"github.com/skekre98/odsharness/security"
	"github.com/skekre98/odsharness/web"
)

const redacted = "********"

type applicationView struct {
	Vendor                   string  `json:"vendor"`
	Name                     string  `json:"name"`
	ClaimSetName             string  `json:"claimSetName"`
	EducationOrganizationIDs []int64 `json:"educationOrganizationIds"`
}

type clientView struct {
	Key                      string  `json:"key"`
	Secret                   string  `json:"secret"`
	Name                     string  `json:"name"`
	Vendor                   string  `json:"vendor"`
	Application              string  `json:"application"`
	EducationOrganizationIDs []int64 `json:"educationOrganizationIds"`
}

type resourceClaimView struct {
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
}

type claimSetView struct {
	Name      string              `json:"name"`
	Resources []resourceClaimView `json:"resources"`
}

// mountRoutes exposes the seeded data read-only under /harness. Client
// secrets are never returned.
func mountRoutes(r web.Router, c core.Container) {
	g := r.Group("/harness")

	g.GET("/applications", func(ctx *gin.Context) {
		apps, err := core.Get[admin.Store](c).ListApplications(ctx.Request.Context())
		if err != nil {
			web.Problem(ctx, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]applicationView, 0, len(apps))
		for _, a := range apps {
			out = append(out, applicationView{
				Vendor:                   a.Vendor,
				Name:                     a.Name,
				ClaimSetName:             a.ClaimSetName,
				EducationOrganizationIDs: a.EducationOrganizationIDs,
			})
		}
		ctx.JSON(http.StatusOK, gin.H{"applications": out})
	})

	g.GET("/clients", func(ctx *gin.Context) {
		clients, err := core.Get[admin.Store](c).ListClients(ctx.Request.Context())
		if err != nil {
			web.Problem(ctx, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]clientView, 0, len(clients))
		for _, cl := range clients {
			out = append(out, clientView{
				Key:                      cl.Key,
				Secret:                   redacted,
				Name:                     cl.Name,
				Vendor:                   cl.Vendor,
				Application:              cl.Application,
				EducationOrganizationIDs: cl.EducationOrganizationIDs,
			})
		}
		ctx.JSON(http.StatusOK, gin.H{"clients": out})
	})

	g.GET("/claimsets", func(ctx *gin.Context) {
		sets, err := core.Get[security.Store](c).ListClaimSets(ctx.Request.Context())
		if err != nil {
			web.Problem(ctx, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]claimSetView, 0, len(sets))
		for _, cs := range sets {
			view := claimSetView{Name: cs.Name, Resources: []resourceClaimView{}}
			for _, rc := range cs.Resources {
				view.Resources = append(view.Resources, resourceClaimView{Name: rc.Name, Actions: rc.Actions})
			}
			out = append(out, view)
		}
		ctx.JSON(http.StatusOK, gin.H{"claimSets": out})
	})
}
