package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"remind-candles/internal/wish/domain"
	"remind-candles/internal/wish/dto"
	"remind-candles/internal/wish/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// wishUsecase implements WishUsecase interface
type wishUsecase struct {
	wishRepo     repository.WishRepository
	deliveryRepo repository.DeliveryRepository
	log          *zap.Logger

	seedMu sync.Mutex
}

// NewWishUsecase creates a new instance of wishUsecase
func NewWishUsecase(wishRepo repository.WishRepository, deliveryRepo repository.DeliveryRepository, log *zap.Logger) WishUsecase {
	return &wishUsecase{
		wishRepo:     wishRepo,
		deliveryRepo: deliveryRepo,
		log:          log.Named("wish"),
	}
}

// ensureSeeded gives a user with an empty library the default wishes
func (u *wishUsecase) ensureSeeded(userID string) error {
	u.seedMu.Lock()
	defer u.seedMu.Unlock()

	count, err := u.wishRepo.CountByUserID(userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults, err := domain.DefaultWishes()
	if err != nil {
		return err
	}

	now := time.Now()
	wishes := make([]*domain.WishTemplate, 0, len(defaults))
	for i, d := range defaults {
		// Stagger timestamps so the seed order survives sorting
		created := now.Add(time.Duration(i) * time.Millisecond)
		wishes = append(wishes, &domain.WishTemplate{
			ID:        uuid.New().String(),
			UserID:    userID,
			Name:      d.Name,
			Content:   d.Content,
			IsDefault: i == 0,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}

	if err := u.wishRepo.CreateBatch(wishes); err != nil {
		return fmt.Errorf("seed default wishes: %w", err)
	}
	u.log.Info("seeded default wishes", zap.String("user_id", userID), zap.Int("count", len(wishes)))
	return nil
}

func (u *wishUsecase) ListWishes(userID string) ([]*domain.WishTemplate, error) {
	if err := u.ensureSeeded(userID); err != nil {
		return nil, err
	}
	return u.wishRepo.FindByUserID(userID)
}

func (u *wishUsecase) GetWish(userID, id string) (*domain.WishTemplate, error) {
	wish, err := u.wishRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if wish == nil {
		return nil, domain.ErrWishNotFound
	}
	if wish.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return wish, nil
}

func (u *wishUsecase) DefaultWish(userID string) (*domain.WishTemplate, error) {
	wishes, err := u.ListWishes(userID)
	if err != nil {
		return nil, err
	}
	if len(wishes) == 0 {
		return nil, domain.ErrWishNotFound
	}
	for _, w := range wishes {
		if w.IsDefault {
			return w, nil
		}
	}
	return wishes[0], nil
}

func (u *wishUsecase) AddWish(userID string, req *dto.CreateWishRequest) (*domain.WishTemplate, error) {
	name := strings.TrimSpace(req.Name)
	content := strings.TrimSpace(req.Content)
	if name == "" || content == "" {
		return nil, domain.ErrInvalidWish
	}
	if err := u.ensureSeeded(userID); err != nil {
		return nil, err
	}

	now := time.Now()
	wish := &domain.WishTemplate{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Content:   content,
		IsDefault: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.wishRepo.Create(wish); err != nil {
		return nil, fmt.Errorf("create wish: %w", err)
	}
	return wish, nil
}

func (u *wishUsecase) UpdateWish(userID, id string, req *dto.UpdateWishRequest) (*domain.WishTemplate, error) {
	wish, err := u.GetWish(userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		wish.Name = strings.TrimSpace(*req.Name)
	}
	if req.Content != nil {
		wish.Content = strings.TrimSpace(*req.Content)
	}
	if wish.Name == "" || wish.Content == "" {
		return nil, domain.ErrInvalidWish
	}

	wish.UpdatedAt = time.Now()
	if err := u.wishRepo.Update(wish); err != nil {
		return nil, fmt.Errorf("update wish: %w", err)
	}
	return wish, nil
}

func (u *wishUsecase) DeleteWish(userID, id string) error {
	wish, err := u.GetWish(userID, id)
	if err != nil {
		return err
	}
	if wish.IsDefault {
		return domain.ErrCannotDeleteDefault
	}

	count, err := u.wishRepo.CountByUserID(userID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return domain.ErrCannotDeleteDefault
	}

	return u.wishRepo.Delete(id)
}

func (u *wishUsecase) SetDefault(userID, id string) (*domain.WishTemplate, error) {
	if _, err := u.GetWish(userID, id); err != nil {
		return nil, err
	}
	if err := u.wishRepo.SetDefault(userID, id); err != nil {
		return nil, err
	}
	return u.GetWish(userID, id)
}

func (u *wishUsecase) RecordDelivery(delivery *domain.WishDelivery) error {
	if delivery.ID == "" {
		delivery.ID = uuid.New().String()
	}
	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now()
	}
	return u.deliveryRepo.Create(delivery)
}

func (u *wishUsecase) ListDeliveries(userID, birthdayID string, limit int) ([]*domain.WishDelivery, error) {
	return u.deliveryRepo.FindByBirthday(userID, birthdayID, limit)
}
