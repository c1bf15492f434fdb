package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cratedig/internal/models"
)

const preferenceSchemaVersion = 1

// playHistoryLimit caps the stored play history per listener. Plays older
// than any realistic cooldown window have no effect on feeds, so the
// document only keeps the most recent entries.
const playHistoryLimit = 500

// trackStamp records when a listener last touched a track. Stamps live in
// arrays rather than keyed subdocuments because composite track IDs can
// contain characters MongoDB rejects in field names.
type trackStamp struct {
	TrackID string    `bson:"track_id"`
	At      time.Time `bson:"at"`
}

// preferenceDocument is the MongoDB representation of one listener's
// taste signals. Artist names are normalized before storage, so snapshots
// can use the stored values as map keys directly.
type preferenceDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"user_id"`
	LikedArtists     []string           `bson:"liked_artists,omitempty"`
	DislikedArtists  []string           `bson:"disliked_artists,omitempty"`
	DislikedTrackIDs []string           `bson:"disliked_track_ids,omitempty"`
	LikedAt          []trackStamp       `bson:"liked_at,omitempty"`
	PlayedAt         []trackStamp       `bson:"played_at,omitempty"`
	SchemaVersion    int                `bson:"schema_version"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (d *preferenceDocument) toState() *models.PreferenceState {
	state := models.NewPreferenceState(d.UserID)
	for _, artist := range d.LikedArtists {
		state.LikedArtists[artist] = true
	}
	for _, artist := range d.DislikedArtists {
		state.DislikedArtists[artist] = true
	}
	for _, id := range d.DislikedTrackIDs {
		state.DislikedTrackIDs[id] = true
	}
	for _, stamp := range d.LikedAt {
		state.LikedAt[stamp.TrackID] = stamp.At
	}
	for _, stamp := range d.PlayedAt {
		state.PlayedAt[stamp.TrackID] = stamp.At
	}
	return state
}

// mongoPreferenceRepository implements PreferenceRepository using MongoDB
type mongoPreferenceRepository struct {
	collection *mongo.Collection
}

// NewMongoPreferenceRepository creates a new MongoDB-backed preference repository
func NewMongoPreferenceRepository(db *models.Database) PreferenceRepository {
	return &mongoPreferenceRepository{
		collection: db.DB.Collection("preferences"),
	}
}

// Snapshot loads the listener's document and converts it to a snapshot
func (r *mongoPreferenceRepository) Snapshot(ctx context.Context, userID string) (*models.PreferenceState, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	var doc preferenceDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.NewPreferenceState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	return doc.toState(), nil
}

// RecordLike adds the artist to the liked set and stamps the track
func (r *mongoPreferenceRepository) RecordLike(ctx context.Context, userID, trackID, artist string) error {
	if err := validateGesture(userID, trackID, artist); err != nil {
		return err
	}

	now := time.Now()
	update := bson.M{
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": insertFields(now),
	}
	if artist != "" {
		update["$addToSet"] = bson.M{"liked_artists": models.ArtistKey(artist)}
	}
	if trackID != "" {
		if err := r.dropStamp(ctx, userID, "liked_at", trackID); err != nil {
			return err
		}
		update["$push"] = bson.M{
			"liked_at": trackStamp{TrackID: trackID, At: now},
		}
	}

	return r.upsert(ctx, userID, update, "record like")
}

// RecordDislike adds the track and its artist to the disliked sets
func (r *mongoPreferenceRepository) RecordDislike(ctx context.Context, userID, trackID, artist string) error {
	if err := validateGesture(userID, trackID, artist); err != nil {
		return err
	}

	addToSet := bson.M{}
	if artist != "" {
		addToSet["disliked_artists"] = models.ArtistKey(artist)
	}
	if trackID != "" {
		addToSet["disliked_track_ids"] = trackID
	}

	now := time.Now()
	update := bson.M{
		"$addToSet":    addToSet,
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": insertFields(now),
	}

	return r.upsert(ctx, userID, update, "record dislike")
}

// RecordPlay stamps the track and trims the play history
func (r *mongoPreferenceRepository) RecordPlay(ctx context.Context, userID, trackID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if trackID == "" {
		return fmt.Errorf("track ID is required")
	}

	if err := r.dropStamp(ctx, userID, "played_at", trackID); err != nil {
		return err
	}

	now := time.Now()
	update := bson.M{
		"$push": bson.M{
			"played_at": bson.M{
				"$each":  []trackStamp{{TrackID: trackID, At: now}},
				"$slice": -playHistoryLimit,
			},
		},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": insertFields(now),
	}

	return r.upsert(ctx, userID, update, "record play")
}

// RemoveLike pulls the artist and the track stamp from the liked sets
func (r *mongoPreferenceRepository) RemoveLike(ctx context.Context, userID, trackID, artist string) error {
	if err := validateGesture(userID, trackID, artist); err != nil {
		return err
	}

	pull := bson.M{}
	if artist != "" {
		pull["liked_artists"] = models.ArtistKey(artist)
	}
	if trackID != "" {
		pull["liked_at"] = bson.M{"track_id": trackID}
	}

	update := bson.M{
		"$pull": pull,
		"$set":  bson.M{"updated_at": time.Now()},
	}

	// No upsert: removing a gesture from an unknown listener is a no-op
	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

// RemoveDislike pulls the artist and track from the disliked sets
func (r *mongoPreferenceRepository) RemoveDislike(ctx context.Context, userID, trackID, artist string) error {
	if err := validateGesture(userID, trackID, artist); err != nil {
		return err
	}

	pull := bson.M{}
	if artist != "" {
		pull["disliked_artists"] = models.ArtistKey(artist)
	}
	if trackID != "" {
		pull["disliked_track_ids"] = trackID
	}

	update := bson.M{
		"$pull": pull,
		"$set":  bson.M{"updated_at": time.Now()},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove dislike: %w", err)
	}
	return nil
}

// dropStamp removes a stale timestamp entry so the follow-up push cannot
// leave two stamps for the same track
func (r *mongoPreferenceRepository) dropStamp(ctx context.Context, userID, field, trackID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{field: bson.M{"track_id": trackID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to refresh %s stamp: %w", field, err)
	}
	return nil
}

func (r *mongoPreferenceRepository) upsert(ctx context.Context, userID string, update bson.M, operation string) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", operation, err)
	}
	return nil
}

// insertFields seeds a fresh document on upsert. The user_id comes from
// the filter, so it must not be repeated here.
func insertFields(now time.Time) bson.M {
	return bson.M{
		"created_at":     now,
		"schema_version": preferenceSchemaVersion,
	}
}

func validateGesture(userID, trackID, artist string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if trackID == "" && artist == "" {
		return fmt.Errorf("a track ID or artist is required")
	}
	return nil
}
