package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skekre98/odsharness/admin"
)

type vendorDoc struct {
	Name              string   `bson:"_id"`
	NamespacePrefixes []string `bson:"namespacePrefixes"`
}

// applicationID is a compound _id so vendor and application names may
// contain any character.
type applicationID struct {
	Vendor string `bson:"vendor"`
	Name   string `bson:"name"`
}

type applicationDoc struct {
	ID                       applicationID `bson:"_id"`
	Vendor                   string  `bson:"vendor"`
	Name                     string  `bson:"name"`
	ClaimSetName             string  `bson:"claimSetName"`
	EducationOrganizationIDs []int64 `bson:"educationOrganizationIds"`
}

// clientID identifies a client by owner and name. The key is a plain field
// so a rotated key replaces the old record.
type clientID struct {
	Vendor      string `bson:"vendor"`
	Application string `bson:"application"`
	Name        string `bson:"name"`
}

type clientDoc struct {
	ID                       clientID `bson:"_id"`
	Key                      string   `bson:"key"`
	Secret                   string  `bson:"secret"`
	Name                     string  `bson:"name"`
	Vendor                   string  `bson:"vendor"`
	Application              string  `bson:"application"`
	EducationOrganizationIDs []int64 `bson:"educationOrganizationIds"`
}

// AdminStore implements admin.Store.
type AdminStore struct {
	db *mongo.Database
}

var _ admin.Store = (*AdminStore)(nil)

func NewAdminStore(db *mongo.Database) *AdminStore {
	return &AdminStore{db: db}
}

func (s *AdminStore) UpsertVendor(ctx context.Context, v admin.Vendor) error {
	doc := vendorDoc{Name: v.Name, NamespacePrefixes: v.NamespacePrefixes}
	_, err := s.db.Collection(vendorsCollection).ReplaceOne(ctx, bson.M{"_id": v.Name}, doc, replaceUpsert())
	return err
}

func (s *AdminStore) FindApplication(ctx context.Context, vendor, name string) (admin.Application, error) {
	var doc applicationDoc
	err := s.db.Collection(applicationsCollection).
		FindOne(ctx, bson.M{"_id": applicationID{Vendor: vendor, Name: name}}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return admin.Application{}, admin.ErrNotFound
	}
	if err != nil {
		return admin.Application{}, err
	}
	return doc.application(), nil
}

func (s *AdminStore) SaveApplication(ctx context.Context, app admin.Application) error {
	id := applicationID{Vendor: app.Vendor, Name: app.Name}
	doc := applicationDoc{
		ID:                       id,
		Vendor:                   app.Vendor,
		Name:                     app.Name,
		ClaimSetName:             app.ClaimSetName,
		EducationOrganizationIDs: app.EducationOrganizationIDs,
	}
	_, err := s.db.Collection(applicationsCollection).ReplaceOne(ctx, bson.M{"_id": id}, doc, replaceUpsert())
	return err
}

func (s *AdminStore) FindClient(ctx context.Context, vendor, application, name string) (admin.Client, error) {
	var doc clientDoc
	err := s.db.Collection(clientsCollection).
		FindOne(ctx, bson.M{"_id": clientID{Vendor: vendor, Application: application, Name: name}}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return admin.Client{}, admin.ErrNotFound
	}
	if err != nil {
		return admin.Client{}, err
	}
	return doc.client(), nil
}

func (s *AdminStore) UpsertClient(ctx context.Context, c admin.Client) error {
	id := clientID{Vendor: c.Vendor, Application: c.Application, Name: c.Name}
	doc := clientDoc{
		ID:                       id,
		Key:                      c.Key,
		Secret:                   c.Secret,
		Name:                     c.Name,
		Vendor:                   c.Vendor,
		Application:              c.Application,
		EducationOrganizationIDs: c.EducationOrganizationIDs,
	}
	_, err := s.db.Collection(clientsCollection).ReplaceOne(ctx, bson.M{"_id": id}, doc, replaceUpsert())
	return err
}

func (s *AdminStore) ListApplications(ctx context.Context) ([]admin.Application, error) {
	cur, err := s.db.Collection(applicationsCollection).
		Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "vendor", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []applicationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]admin.Application, len(docs))
	for i, d := range docs {
		out[i] = d.application()
	}
	return out, nil
}

func (s *AdminStore) ListClients(ctx context.Context) ([]admin.Client, error) {
	cur, err := s.db.Collection(clientsCollection).
		Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]admin.Client, len(docs))
	for i, d := range docs {
		out[i] = d.client()
	}
	return out, nil
}

func (d applicationDoc) application() admin.Application {
	return admin.Application{
		Vendor:                   d.Vendor,
		Name:                     d.Name,
		ClaimSetName:             d.ClaimSetName,
		EducationOrganizationIDs: d.EducationOrganizationIDs,
	}
}

func (d clientDoc) client() admin.Client {
	return admin.Client{
		Key:                      d.Key,
		Secret:                   d.Secret,
		Name:                     d.Name,
		Vendor:                   d.Vendor,
		Application:              d.Application,
		EducationOrganizationIDs: d.EducationOrganizationIDs,
	}
}
