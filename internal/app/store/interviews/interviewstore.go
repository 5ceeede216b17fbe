// internal/app/store/interviews/interviewstore.go
package interviewstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/verity/internal/app/system/platform"
	"github.com/dalemusser/verity/internal/app/system/token"
	"github.com/dalemusser/verity/internal/domain/models"
)

// Store owns the interviews collection. All cross-request coordination
// for interviews happens here, through unique indexes and conditional
// updates — never through application locks, so the guarantees hold
// under horizontal scale-out.
type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("interview not found")

	// ErrAlreadyCompleted: the (study, participant) pair already finished
	// its interview; the single-use token must not be replayed.
	ErrAlreadyCompleted = errors.New("interview already completed")

	// ErrArtifactConflict: a second completion call supplied different
	// artifact URIs than the first. Identical repeats are acked silently.
	ErrArtifactConflict = errors.New("completion artifacts conflict with prior completion")

	// ErrNotCompleted: claim attempted on a pending interview.
	ErrNotCompleted = errors.New("interview not completed")

	// ErrClaimConflict: interview already claimed by a different identity.
	ErrClaimConflict = errors.New("interview claimed by another user")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("interviews")}
}

func newInterview(studyID primitive.ObjectID, pid string, ttl time.Duration) models.Interview {
	now := time.Now().UTC()
	iv := models.Interview{
		ID:          primitive.NewObjectID(),
		StudyID:     studyID,
		AccessToken: token.New(),
		Status:      models.InterviewPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if pid != "" {
		iv.ExternalParticipantID = &pid
		iv.PlatformSource = platform.Source(pid)
	}
	return iv
}

// Create inserts a new interview with a fresh token and no dedup key.
// Used for bare researcher-generated links and for pid-less resolution,
// where every call intentionally yields a distinct session.
func (s *Store) Create(ctx context.Context, studyID primitive.ObjectID, ttl time.Duration) (models.Interview, error) {
	iv := newInterview(studyID, "", ttl)
	if _, err := s.c.InsertOne(ctx, iv); err != nil {
		return models.Interview{}, err
	}
	return iv, nil
}

// FindOrCreate resolves the (study, external participant) pair to exactly
// one interview row, no matter how many callers race on it.
//
// The insert path relies on the uniq_study_participant partial index:
// two concurrent requests both attempt the insert, the database admits
// one, and the loser re-reads the winner's row. Recruitment platforms
// fire duplicate requests within milliseconds, so this is the one spot
// where true concurrency correctness matters.
//
// Returned cases:
//   - existing pending, unexpired → (row, false, nil): idempotent re-entry.
//   - existing pending, expired   → token and deadline rotated in place,
//     (row, false, nil). The dedup invariant keeps one row per pair, so
//     re-entry after expiry refreshes the credential instead of failing.
//   - existing completed → ErrAlreadyCompleted.
//   - absent → fresh row, (row, true, nil).
func (s *Store) FindOrCreate(ctx context.Context, studyID primitive.ObjectID, pid string, ttl time.Duration) (models.Interview, bool, error) {
	if pid == "" {
		iv, err := s.Create(ctx, studyID, ttl)
		return iv, err == nil, err
	}

	filter := bson.M{"study_id": studyID, "external_participant_id": pid}

	var existing models.Interview
	err := s.c.FindOne(ctx, filter).Decode(&existing)
	switch {
	case err == nil:
		return s.reuse(ctx, existing, ttl)
	case err != mongo.ErrNoDocuments:
		return models.Interview{}, false, err
	}

	iv := newInterview(studyID, pid, ttl)
	_, err = s.c.InsertOne(ctx, iv)
	if err == nil {
		return iv, true, nil
	}
	if !wafflemongo.IsDup(err) {
		return models.Interview{}, false, err
	}

	// Lost the race: the winner's row is authoritative.
	if err := s.c.FindOne(ctx, filter).Decode(&existing); err != nil {
		return models.Interview{}, false, err
	}
	return s.reuse(ctx, existing, ttl)
}

func (s *Store) reuse(ctx context.Context, iv models.Interview, ttl time.Duration) (models.Interview, bool, error) {
	if iv.Status == models.InterviewCompleted {
		return models.Interview{}, false, ErrAlreadyCompleted
	}
	now := time.Now().UTC()
	if !iv.Expired(now) {
		return iv, false, nil
	}

	// Pending but stale: rotate the credential on the existing row.
	fresh := token.New()
	expires := now.Add(ttl)
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": iv.ID, "status": models.InterviewPending},
		bson.M{"$set": bson.M{"access_token": fresh, "expires_at": expires}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var rotated models.Interview
	if err := res.Decode(&rotated); err != nil {
		if err == mongo.ErrNoDocuments {
			// Completed between read and rotate.
			return models.Interview{}, false, ErrAlreadyCompleted
		}
		return models.Interview{}, false, err
	}
	return rotated, false, nil
}

// GetByToken looks up an interview by its access token. Token validation
// is exactly this lookup; tokens carry no decodable structure.
func (s *Store) GetByToken(ctx context.Context, accessToken string) (models.Interview, error) {
	var iv models.Interview
	err := s.c.FindOne(ctx, bson.M{"access_token": accessToken}).Decode(&iv)
	if err == mongo.ErrNoDocuments {
		return models.Interview{}, ErrNotFound
	}
	if err != nil {
		return models.Interview{}, err
	}
	return iv, nil
}

// CompleteByToken transitions pending → completed exactly once and
// records artifact locations. The transition is a single conditional
// update guarded on status, so only one of any number of concurrent
// completion calls wins; the rest fall through to the idempotency check.
//
// Repeat calls with the same transcript and recording URIs return the
// stored row unchanged. Divergent URIs fail with ErrArtifactConflict;
// divergent notes are ignored in the comparison (first writer wins).
func (s *Store) CompleteByToken(ctx context.Context, accessToken, transcriptURI, recordingURI, notes string) (models.Interview, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"access_token": accessToken, "status": models.InterviewPending},
		bson.M{"$set": bson.M{
			"status":         models.InterviewCompleted,
			"completed_at":   now,
			"transcript_uri": transcriptURI,
			"recording_uri":  recordingURI,
			"notes":          notes,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var iv models.Interview
	err := res.Decode(&iv)
	if err == nil {
		return iv, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Interview{}, err
	}

	// No pending row matched: unknown token, or already completed.
	iv, err = s.GetByToken(ctx, accessToken)
	if err != nil {
		return models.Interview{}, err
	}
	if iv.TranscriptURI == transcriptURI && iv.RecordingURI == recordingURI {
		return iv, nil
	}
	return models.Interview{}, ErrArtifactConflict
}

// Claim binds a completed interview to a participant identity,
// first-claim-wins. The bind is a conditional update on
// (completed, unclaimed); losers are classified by re-reading the row.
func (s *Store) Claim(ctx context.Context, accessToken string, verityUserID primitive.ObjectID) (models.Interview, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"access_token":   accessToken,
			"status":         models.InterviewCompleted,
			"verity_user_id": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{"verity_user_id": verityUserID, "claimed_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var iv models.Interview
	err := res.Decode(&iv)
	if err == nil {
		return iv, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Interview{}, err
	}

	iv, err = s.GetByToken(ctx, accessToken)
	if err != nil {
		return models.Interview{}, err
	}
	if iv.Status != models.InterviewCompleted {
		return models.Interview{}, ErrNotCompleted
	}
	if iv.VerityUserID != nil && *iv.VerityUserID == verityUserID {
		// Idempotent re-claim by the same identity.
		return iv, nil
	}
	return models.Interview{}, ErrClaimConflict
}

// GetByID loads one interview.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Interview, error) {
	var iv models.Interview
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&iv)
	if err == mongo.ErrNoDocuments {
		return models.Interview{}, ErrNotFound
	}
	if err != nil {
		return models.Interview{}, err
	}
	return iv, nil
}

// ListByStudy returns a study's interviews, newest first.
func (s *Store) ListByStudy(ctx context.Context, studyID primitive.ObjectID) ([]models.Interview, error) {
	cur, err := s.c.Find(ctx, bson.M{"study_id": studyID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ivs []models.Interview
	if err := cur.All(ctx, &ivs); err != nil {
		return nil, err
	}
	return ivs, nil
}

// ListByVerityUser returns every interview claimed by the given
// participant identity, across all studies and organizations.
func (s *Store) ListByVerityUser(ctx context.Context, verityUserID primitive.ObjectID) ([]models.Interview, error) {
	cur, err := s.c.Find(ctx, bson.M{"verity_user_id": verityUserID},
		options.Find().SetSort(bson.D{{Key: "claimed_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ivs []models.Interview
	if err := cur.All(ctx, &ivs); err != nil {
		return nil, err
	}
	return ivs, nil
}
