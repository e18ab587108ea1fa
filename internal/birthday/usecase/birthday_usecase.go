package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"remind-candles/internal/birthday/domain"
	"remind-candles/internal/birthday/dto"
	"remind-candles/internal/birthday/repository"
	"remind-candles/pkg/fuzzy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSearchLimit = 20

// birthdayUsecase implements BirthdayUsecase interface
type birthdayUsecase struct {
	repo repository.BirthdayRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewBirthdayUsecase creates a new instance of birthdayUsecase. Dates are
// judged as calendar days in loc.
func NewBirthdayUsecase(repo repository.BirthdayRepository, loc *time.Location, log *zap.Logger) BirthdayUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &birthdayUsecase{
		repo: repo,
		log:  log.Named("birthday"),
		now:  func() time.Time { return time.Now().In(loc) },
	}
}

func (u *birthdayUsecase) AddBirthday(userID string, req *dto.CreateBirthdayRequest) (*domain.Birthday, error) {
	in := birthdayInput{
		Name:       req.Name,
		BirthDate:  req.BirthDate,
		Email:      req.Email,
		Phone:      req.Phone,
		CustomWish: req.CustomWish,
	}
	in.trim()

	date, yearKnown, err := validateInput(in, u.now())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	birthday := &domain.Birthday{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		CustomWish: in.CustomWish,
		WishID:     strings.TrimSpace(req.WishID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	birthday.SetBirthDate(date, yearKnown)

	if err := u.repo.Create(birthday); err != nil {
		return nil, fmt.Errorf("create birthday: %w", err)
	}

	u.log.Info("birthday added", zap.String("user_id", userID), zap.String("birthday_id", birthday.ID))
	return birthday, nil
}

func (u *birthdayUsecase) GetBirthday(userID, id string) (*domain.Birthday, error) {
	birthday, err := u.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if birthday == nil {
		return nil, domain.ErrBirthdayNotFound
	}
	if birthday.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return birthday, nil
}

func (u *birthdayUsecase) ListBirthdays(userID string) ([]*domain.Birthday, error) {
	return u.repo.FindByUserID(userID)
}

func (u *birthdayUsecase) UpdateBirthday(userID, id string, req *dto.UpdateBirthdayRequest) (*domain.Birthday, error) {
	birthday, err := u.GetBirthday(userID, id)
	if err != nil {
		return nil, err
	}

	in := birthdayInput{
		Name:       birthday.Name,
		BirthDate:  dto.FormatBirthDate(birthday),
		Email:      birthday.Email,
		Phone:      birthday.Phone,
		CustomWish: birthday.CustomWish,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.BirthDate != nil {
		in.BirthDate = *req.BirthDate
	}
	if req.Email != nil {
		in.Email = *req.Email
	}
	if req.Phone != nil {
		in.Phone = *req.Phone
	}
	if req.CustomWish != nil {
		in.CustomWish = *req.CustomWish
	}
	in.trim()

	date, yearKnown, err := validateInput(in, u.now())
	if err != nil {
		return nil, err
	}

	birthday.Name = in.Name
	birthday.Email = in.Email
	birthday.Phone = in.Phone
	birthday.CustomWish = in.CustomWish
	if req.WishID != nil {
		birthday.WishID = strings.TrimSpace(*req.WishID)
	}
	birthday.SetBirthDate(date, yearKnown)
	birthday.UpdatedAt = time.Now()

	if err := u.repo.Update(birthday); err != nil {
		return nil, fmt.Errorf("update birthday: %w", err)
	}
	return birthday, nil
}

func (u *birthdayUsecase) DeleteBirthday(userID, id string) error {
	if _, err := u.GetBirthday(userID, id); err != nil {
		return err
	}
	if err := u.repo.Delete(id); err != nil {
		return fmt.Errorf("delete birthday: %w", err)
	}
	u.log.Info("birthday deleted", zap.String("user_id", userID), zap.String("birthday_id", id))
	return nil
}

func (u *birthdayUsecase) Upcoming(userID string, today time.Time, days int) ([]*domain.Birthday, error) {
	all, err := u.repo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	upcoming := make([]*domain.Birthday, 0, len(all))
	for _, b := range all {
		if b.DaysUntil(today) <= days {
			upcoming = append(upcoming, b)
		}
	}
	domain.SortByNextOccurrence(upcoming, today)
	return upcoming, nil
}

func (u *birthdayUsecase) OnDate(userID string, year int, month time.Month, day int) ([]*domain.Birthday, error) {
	birthdays, err := u.repo.FindByMonthDay(userID, int(month), day)
	if err != nil {
		return nil, err
	}

	// Leap day birthdays are celebrated on Feb 28 in other years
	if month == time.February && day == 28 && !domain.IsLeapYear(year) {
		leap, err := u.repo.FindByMonthDay(userID, int(time.February), 29)
		if err != nil {
			return nil, err
		}
		birthdays = append(birthdays, leap...)
	}
	if month == time.February && day == 29 && !domain.IsLeapYear(year) {
		return []*domain.Birthday{}, nil
	}
	return birthdays, nil
}

func (u *birthdayUsecase) Search(userID, query string, limit int) ([]ScoredBirthday, error) {
	if strings.TrimSpace(query) == "" {
		return []ScoredBirthday{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	all, err := u.repo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredBirthday, 0)
	for _, b := range all {
		if score := fuzzy.RelevanceScore(query, b.Name, b.Email, b.Phone); score > 0 {
			results = append(results, ScoredBirthday{Birthday: b, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
