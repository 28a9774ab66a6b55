package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/logger"
)

type stubStreakService struct {
	result *service.StreakResult
	user   *entity.User
	err    error
}

func (s *stubStreakService) Advance(_ context.Context, _ int64, _ string, _ bool, _ time.Time) (*service.StreakResult, error) {
	return s.result, s.err
}

func (s *stubStreakService) State(_ context.Context, _ int64) (*entity.User, error) {
	return s.user, s.err
}

func (s *stubStreakService) HasCompletedWithin(_ context.Context, _ int64, _ time.Time) (bool, error) {
	return false, nil
}

type stubReminderService struct {
	reminders []string
	deleted   bool
	err       error
}

func (s *stubReminderService) SetReminder(_ context.Context, _ int64, timeOfDay string) (entity.TimeOfDay, error) {
	if s.err != nil {
		return entity.TimeOfDay{}, s.err
	}
	return entity.ParseTimeOfDay(timeOfDay)
}

func (s *stubReminderService) ReplaceReminders(_ context.Context, _ int64, times []string) ([]entity.TimeOfDay, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]entity.TimeOfDay, 0, len(times))
	for _, raw := range times {
		slot, err := entity.ParseTimeOfDay(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, slot)
	}
	return out, nil
}

func (s *stubReminderService) ListReminders(_ context.Context, _ int64) ([]string, error) {
	return s.reminders, s.err
}

func (s *stubReminderService) DeleteReminder(_ context.Context, _ int64, timeOfDay string) (bool, error) {
	if _, err := entity.ParseTimeOfDay(timeOfDay); err != nil {
		return false, err
	}
	return s.deleted, s.err
}

func (s *stubReminderService) IsDue(_ context.Context, _ *entity.User, _ time.Time) (bool, entity.TimeOfDay, error) {
	return false, entity.TimeOfDay{}, nil
}

func (s *stubReminderService) ProcessTick(_ context.Context) error     { return nil }
func (s *stubReminderService) ProcessEndOfDay(_ context.Context) error { return nil }

type stubMessageService struct{}

func (stubMessageService) Threshold(days int32, _ bool) int32 { return days }
func (stubMessageService) StreakMessage(_ context.Context, _ *entity.User) string {
	return "status message"
}
func (stubMessageService) ReminderMessage(_ context.Context, _ *entity.User) string   { return "" }
func (stubMessageService) EndOfDayMessage(_ context.Context, _ *entity.User) string   { return "" }

type stubTafsirService struct {
	result *entity.TafsirResult
	err    error
}

func (s *stubTafsirService) LookupText(_ context.Context, _ string, _ string) (*entity.TafsirResult, error) {
	return s.result, s.err
}

func (s *stubTafsirService) LookupImage(_ context.Context, _ []byte, _ string, _ string) (*entity.TafsirResult, error) {
	return s.result, s.err
}

type stubUserRepo struct {
	err error
}

func (s *stubUserRepo) GetByTelegramID(_ context.Context, _ int64) (*entity.User, error) {
	return nil, entity.ErrUserNotFound
}
func (s *stubUserRepo) Create(_ context.Context, _ *entity.User) error { return nil }
func (s *stubUserRepo) UpdateStreak(_ context.Context, _ int64, _, _ int32, _ *time.Time) error {
	return nil
}
func (s *stubUserRepo) UpdateTimezone(_ context.Context, _ int64, _ string) error { return s.err }
func (s *stubUserRepo) UpdateLanguage(_ context.Context, _ int64, _ string) error { return s.err }
func (s *stubUserRepo) GetUsersWithReminders(_ context.Context) ([]*entity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetAll(_ context.Context) ([]*entity.User, error) { return nil, nil }
func (s *stubUserRepo) CountActiveSince(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type stubCheckInRepo struct {
	checkIns []*entity.CheckIn
}

func (s *stubCheckInRepo) Create(_ context.Context, _ *entity.CheckIn) error { return nil }
func (s *stubCheckInRepo) GetSince(_ context.Context, _ int64, _ time.Time) ([]*entity.CheckIn, error) {
	return s.checkIns, nil
}
func (s *stubCheckInRepo) HasCompletionSince(_ context.Context, _ int64, _ time.Time) (bool, error) {
	return false, nil
}

func newTestRouter(t *testing.T, streaks service.StreakService, reminders service.ReminderService, tafsir service.TafsirService, userRepo *stubUserRepo) *http.ServeMux {
	t.Helper()
	if userRepo == nil {
		userRepo = &stubUserRepo{}
	}
	h := NewHandler(streaks, reminders, stubMessageService{}, tafsir, userRepo, &stubCheckInRepo{}, logger.NewNop())
	return NewRouter(h, true, "/metrics")
}

func TestHandleCheckIn(t *testing.T) {
	streaks := &stubStreakService{
		result: &service.StreakResult{CurrentStreak: 5},
		user:   &entity.User{TelegramID: 100, CurrentStreak: 5},
	}
	router := newTestRouter(t, streaks, &stubReminderService{}, &stubTafsirService{}, nil)

	body := `{"user_id": 100, "completed": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkins", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp checkInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CurrentStreak != 5 || resp.AlreadyCompleted {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Message != "status message" {
		t.Errorf("expected status message, got %q", resp.Message)
	}
}

func TestHandleCheckIn_MissingUserID(t *testing.T) {
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkins", strings.NewReader(`{"completed": true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleGetStreak(t *testing.T) {
	streaks := &stubStreakService{
		user: &entity.User{TelegramID: 100, CurrentStreak: 3},
	}
	router := newTestRouter(t, streaks, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/100/streak", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp streakResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != 100 || resp.CurrentStreak != 3 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleGetStreak_BadID(t *testing.T) {
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/abc/streak", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSetReminders_ReplaceList(t *testing.T) {
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, &stubTafsirService{}, nil)

	body := `{"times": ["07:30", "21:00"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/100/reminders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp remindersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Reminders) != 2 || resp.Reminders[0] != "07:30" {
		t.Errorf("unexpected reminders %v", resp.Reminders)
	}
}

func TestHandleCheckInHistory(t *testing.T) {
	streaks := &stubStreakService{}
	router := newTestRouter(t, streaks, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/100/checkins?days=30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp checkInHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != 100 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleCheckInHistory_BadDays(t *testing.T) {
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/100/checkins?days=9000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSetReminder_InvalidTime(t *testing.T) {
	reminders := &stubReminderService{err: entity.ErrInvalidTimeOfDay}
	router := newTestRouter(t, &stubStreakService{}, reminders, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/100/reminders", strings.NewReader(`{"time": "25:99"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleDeleteReminder_NotFound(t *testing.T) {
	reminders := &stubReminderService{deleted: false}
	router := newTestRouter(t, &stubStreakService{}, reminders, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/100/reminders", strings.NewReader(`{"time": "07:30"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleSetLanguage_Validation(t *testing.T) {
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/100/language", strings.NewReader(`{"language": "fr"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleTafsir_Text(t *testing.T) {
	tafsir := &stubTafsirService{
		result: &entity.TafsirResult{
			SurahName:   "Al-Fatihah",
			SurahNumber: 1,
			AyahNumber:  1,
			Tafsir:      "The opening of the Book.",
			Confidence:  92,
		},
	}
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, tafsir, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tafsir", strings.NewReader(`{"query": "بسم الله", "language": "en"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp tafsirResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SurahNumber != 1 || resp.SurahName != "Al-Fatihah" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleTafsir_RequiresInput(t *testing.T) {
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tafsir", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t, &stubStreakService{}, &stubReminderService{}, &stubTafsirService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
