package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicore/clinic-system/internal/core/domain"
	"github.com/clinicore/clinic-system/internal/core/ports"
)

// ProfileRepository persists role profile documents. The target collection
// is resolved from the role registry, so one repository serves all eight
// role collections.
type ProfileRepository struct {
	db *mongo.Database
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) collection(role domain.Role) (*mongo.Collection, domain.RoleDescriptor, error) {
	desc, ok := domain.LookupRole(role)
	if !ok {
		return nil, domain.RoleDescriptor{}, fmt.Errorf("role %q has no profile collection", role)
	}
	return r.db.Collection(desc.Collection), desc, nil
}

// Insert stores a new profile document and fills in p.ID. The identifier
// is written under the role's own field name (doctor_id, patient_id, ...).
func (r *ProfileRepository) Insert(ctx context.Context, p *domain.Profile) error {
	col, desc, err := r.collection(p.Role)
	if err != nil {
		return err
	}

	userOID, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return fmt.Errorf("profile user reference: %w", err)
	}

	oid := primitive.NewObjectID()
	doc := bson.M{
		"_id":        oid,
		desc.IDField: p.Identifier,
		"user":       userOID,
		"name":       p.Name,
		"email":      p.Email,
		"isActive":   p.IsActive,
		"joinDate":   p.JoinDate.UTC(),
	}
	if p.Phone != "" {
		doc["phone"] = p.Phone
	}
	for k, v := range p.Extra {
		doc[k] = v
	}

	if _, err := col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s profile: %w", desc.Collection, err)
	}
	p.ID = oid.Hex()
	return nil
}

// Identifiers returns every stored display identifier for the role whose
// value matches the role's pattern.
func (r *ProfileRepository) Identifiers(ctx context.Context, desc domain.RoleDescriptor) ([]string, error) {
	col := r.db.Collection(desc.Collection)

	filter := bson.M{desc.IDField: primitive.Regex{Pattern: desc.Pattern.String()}}
	opts := options.Find().SetProjection(bson.M{desc.IDField: 1})

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", desc.Collection, err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", desc.Collection, err)
		}
		if id, ok := doc[desc.IDField].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, cur.Err()
}

func (r *ProfileRepository) FindByUser(ctx context.Context, role domain.Role, userID string) (*domain.Profile, error) {
	col, desc, err := r.collection(role)
	if err != nil {
		return nil, err
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}

	var doc bson.M
	if err := col.FindOne(ctx, bson.M{"user": userOID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find %s profile: %w", desc.Collection, err)
	}
	return docToProfile(desc, doc), nil
}

// UpdateShared propagates the non-nil shared fields onto the profile
// matched by the user back-reference. A call with no fields set is a no-op.
func (r *ProfileRepository) UpdateShared(ctx context.Context, role domain.Role, userID string, shared ports.SharedProfileFields) error {
	col, desc, err := r.collection(role)
	if err != nil {
		return err
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("profile user reference: %w", err)
	}

	set := bson.M{}
	if shared.Name != nil {
		set["name"] = *shared.Name
	}
	if shared.Email != nil {
		set["email"] = *shared.Email
	}
	if shared.Phone != nil {
		set["phone"] = *shared.Phone
	}
	if len(set) == 0 {
		return nil
	}

	if _, err := col.UpdateOne(ctx, bson.M{"user": userOID}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update %s profile: %w", desc.Collection, err)
	}
	return nil
}

func (r *ProfileRepository) DeleteByUser(ctx context.Context, role domain.Role, userID string) error {
	col, desc, err := r.collection(role)
	if err != nil {
		return err
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("profile user reference: %w", err)
	}

	if _, err := col.DeleteOne(ctx, bson.M{"user": userOID}); err != nil {
		return fmt.Errorf("delete %s profile: %w", desc.Collection, err)
	}
	return nil
}

// EnsureIndexes creates, for every registered role collection, the unique
// index on the user back-reference (at most one profile per user) and on
// the identifier field.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, role := range domain.RegisteredRoles() {
		desc, _ := domain.LookupRole(role)
		indexes := []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: desc.IDField, Value: 1}}, Options: options.Index().SetUnique(true)},
		}
		if _, err := r.db.Collection(desc.Collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("indexes for %s: %w", desc.Collection, err)
		}
	}
	return nil
}

// docToProfile maps a raw profile document back to the domain type; fields
// beyond the shared set land in Extra.
func docToProfile(desc domain.RoleDescriptor, doc bson.M) *domain.Profile {
	p := &domain.Profile{Role: desc.Role, Extra: map[string]any{}}

	for k, v := range doc {
		switch k {
		case "_id":
			if oid, ok := v.(primitive.ObjectID); ok {
				p.ID = oid.Hex()
			}
		case desc.IDField:
			p.Identifier, _ = v.(string)
		case "user":
			if oid, ok := v.(primitive.ObjectID); ok {
				p.UserID = oid.Hex()
			}
		case "name":
			p.Name, _ = v.(string)
		case "email":
			p.Email, _ = v.(string)
		case "phone":
			p.Phone, _ = v.(string)
		case "isActive":
			p.IsActive, _ = v.(bool)
		case "joinDate":
			if dt, ok := v.(primitive.DateTime); ok {
				p.JoinDate = dt.Time().UTC()
			}
		default:
			p.Extra[k] = v
		}
	}
	return p
}
