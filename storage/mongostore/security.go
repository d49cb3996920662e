package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skekre98/odsharness/security"
)

type resourceClaimDoc struct {
	Name    string   `bson:"name"`
	Actions []string `bson:"actions"`
}

type claimSetDoc struct {
	Name      string             `bson:"_id"`
	Resources []resourceClaimDoc `bson:"resources"`
}

// SecurityStore implements security.Store.
type SecurityStore struct {
	db *mongo.Database
}

var _ security.Store = (*SecurityStore)(nil)

func NewSecurityStore(db *mongo.Database) *SecurityStore {
	return &SecurityStore{db: db}
}

func (s *SecurityStore) UpsertClaimSet(ctx context.Context, cs security.ClaimSet) error {
	doc := claimSetDoc{Name: cs.Name}
	for _, rc := range cs.Resources {
		doc.Resources = append(doc.Resources, resourceClaimDoc{Name: rc.Name, Actions: rc.Actions})
	}
	_, err := s.db.Collection(claimSetsCollection).ReplaceOne(ctx, bson.M{"_id": cs.Name}, doc, replaceUpsert())
	return err
}

func (s *SecurityStore) FindClaimSet(ctx context.Context, name string) (security.ClaimSet, error) {
	var doc claimSetDoc
	err := s.db.Collection(claimSetsCollection).FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return security.ClaimSet{}, security.ErrNotFound
	}
	if err != nil {
		return security.ClaimSet{}, err
	}
	return doc.claimSet(), nil
}

func (s *SecurityStore) ListClaimSets(ctx context.Context) ([]security.ClaimSet, error) {
	cur, err := s.db.Collection(claimSetsCollection).
		Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []claimSetDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]security.ClaimSet, len(docs))
	for i, d := range docs {
		out[i] = d.claimSet()
	}
	return out, nil
}

func (d claimSetDoc) claimSet() security.ClaimSet {
	cs := security.ClaimSet{Name: d.Name}
	for _, rc := range d.Resources {
		cs.Resources = append(cs.Resources, security.ResourceClaim{Name: rc.Name, Actions: rc.Actions})
	}
	return cs
}
