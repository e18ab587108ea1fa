package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "remind-candles/internal/auth/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreTokenDoc mirrors the users/{uid}/tokens/{token} documents written
// by web clients.
type firestoreTokenDoc struct {
	Token      string    `firestore:"token"`
	CreatedAt  time.Time `firestore:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
	DeviceInfo struct {
		Platform  string `firestore:"platform"`
		UserAgent string `firestore:"userAgent"`
		Language  string `firestore:"language"`
	} `firestore:"deviceInfo"`
	IsActive bool `firestore:"isActive"`
}

// UserLookup finds a user by ID
type UserLookup interface {
	FindByID(id string) (*authdomain.User, error)
}

type firestoreTokenRepository struct {
	client *firestore.Client
	users  UserLookup
}

// NewFirestoreTokenRepository stores push tokens in Firestore, keyed by the
// token itself under each user document. Users signed in through Firebase
// are stored under their Firebase UID, the path web clients write to.
func NewFirestoreTokenRepository(client *firestore.Client, users UserLookup) PushTokenRepository {
	return &firestoreTokenRepository{client: client, users: users}
}

// ownerDocID returns the users/{uid} document ID for userID
func ownerDocID(users UserLookup, userID string) (string, error) {
	if users == nil {
		return userID, nil
	}
	user, err := users.FindByID(userID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user != nil && user.FirebaseUID != "" {
		return user.FirebaseUID, nil
	}
	return userID, nil
}

// tokenUpdate is the merge applied when a known token registers again.
// createdAt is left alone.
func tokenUpdate(token string, device authdomain.DeviceInfo, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"token":     token,
		"updatedAt": now,
		"isActive":  true,
		"deviceInfo": map[string]interface{}{
			"platform":  device.Platform,
			"userAgent": device.UserAgent,
			"language":  device.Language,
		},
	}
}

func (r *firestoreTokenRepository) tokens(userID string) (*firestore.CollectionRef, error) {
	docID, err := ownerDocID(r.users, userID)
	if err != nil {
		return nil, err
	}
	return r.client.Collection("users").Doc(docID).Collection("tokens"), nil
}

func (r *firestoreTokenRepository) SaveToken(ctx context.Context, userID, token string, device authdomain.DeviceInfo) error {
	if userID == "" || token == "" {
		return authdomain.ErrPushTokenRequired
	}
	coll, err := r.tokens(userID)
	if err != nil {
		return err
	}
	ref := coll.Doc(token)

	now := time.Now()
	doc := firestoreTokenDoc{
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
	}
	doc.DeviceInfo.Platform = device.Platform
	doc.DeviceInfo.UserAgent = device.UserAgent
	doc.DeviceInfo.Language = device.Language

	_, err = ref.Create(ctx, doc)
	if status.Code(err) == codes.AlreadyExists {
		_, err = ref.Set(ctx, tokenUpdate(token, device, now), firestore.MergeAll)
	}
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *firestoreTokenRepository) GetActiveTokens(ctx context.Context, userID string) ([]authdomain.PushToken, error) {
	coll, err := r.tokens(userID)
	if err != nil {
		return nil, err
	}
	snaps, err := coll.Where("isActive", "==", true).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}

	tokens := make([]authdomain.PushToken, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestoreTokenDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode token %s: %w", snap.Ref.ID, err)
		}
		if doc.Token == "" {
			doc.Token = snap.Ref.ID
		}
		tokens = append(tokens, authdomain.PushToken{
			ID:        snap.Ref.ID,
			UserID:    userID,
			Token:     doc.Token,
			Platform:  doc.DeviceInfo.Platform,
			UserAgent: doc.DeviceInfo.UserAgent,
			Language:  doc.DeviceInfo.Language,
			IsActive:  doc.IsActive,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return tokens, nil
}

func (r *firestoreTokenRepository) DeactivateToken(ctx context.Context, userID, token string) error {
	coll, err := r.tokens(userID)
	if err != nil {
		return err
	}
	_, err = coll.Doc(token).Set(ctx, map[string]interface{}{
		"isActive":  false,
		"updatedAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	return err
}

func (r *firestoreTokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	coll, err := r.tokens(userID)
	if err != nil {
		return err
	}
	_, err = coll.Doc(token).Delete(ctx)
	return err
}

func (r *firestoreTokenRepository) DeleteTokensByUserID(ctx context.Context, userID string) error {
	coll, err := r.tokens(userID)
	if err != nil {
		return err
	}
	refs, err := coll.DocumentRefs(ctx).GetAll()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var errs []error
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, fmt.Errorf("delete token %s: %w", refs[i].ID, err))
		}
	}
	return errors.Join(errs...)
}
