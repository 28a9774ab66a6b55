// Package httpapi exposes the bot backend over HTTP for the chat frontend
// and operational tooling.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/gemini"
)

// maxImageBytes bounds tafsir image uploads.
const maxImageBytes = 10 << 20

type Handler struct {
	streaks     service.StreakService
	reminders   service.ReminderService
	messages    service.MessageService
	tafsir      service.TafsirService
	userRepo    repository.UserRepository
	checkInRepo repository.CheckInRepository
	logger      *zap.SugaredLogger
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	streaks service.StreakService,
	reminders service.ReminderService,
	messages service.MessageService,
	tafsir service.TafsirService,
	userRepo repository.UserRepository,
	checkInRepo repository.CheckInRepository,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		streaks:     streaks,
		reminders:   reminders,
		messages:    messages,
		tafsir:      tafsir,
		userRepo:    userRepo,
		checkInRepo: checkInRepo,
		logger:      logger,
	}
}

// --- /api/v1/checkins ---

type checkInRequest struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Completed bool   `json:"completed"`
}

type checkInResponse struct {
	CurrentStreak    int32  `json:"current_streak"`
	ReverseStreak    int32  `json:"reverse_streak"`
	AlreadyCompleted bool   `json:"already_completed"`
	Message          string `json:"message,omitempty"`
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.streaks.Advance(r.Context(), req.UserID, req.Username, req.Completed, time.Now().UTC())
	if err != nil {
		h.logger.Errorw("check-in failed", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process check-in")
		return
	}

	resp := checkInResponse{
		CurrentStreak:    result.CurrentStreak,
		ReverseStreak:    result.ReverseStreak,
		AlreadyCompleted: result.AlreadyCompleted,
	}

	if user, err := h.streaks.State(r.Context(), req.UserID); err == nil {
		resp.Message = h.messages.StreakMessage(r.Context(), user)
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- /api/v1/users/{id}/streak ---

type streakResponse struct {
	UserID        int64      `json:"user_id"`
	CurrentStreak int32      `json:"current_streak"`
	ReverseStreak int32      `json:"reverse_streak"`
	LastCheckIn   *time.Time `json:"last_check_in,omitempty"`
	Message       string     `json:"message"`
}

func (h *Handler) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	user, err := h.streaks.State(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("streak lookup failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get streak")
		return
	}

	writeJSON(w, http.StatusOK, streakResponse{
		UserID:        user.TelegramID,
		CurrentStreak: user.CurrentStreak,
		ReverseStreak: user.ReverseStreak,
		LastCheckIn:   user.LastCheckIn,
		Message:       h.messages.StreakMessage(r.Context(), user),
	})
}

// --- /api/v1/users/{id}/checkins ---

type checkInRecord struct {
	CheckInTime time.Time `json:"check_in_time"`
	Completed   bool      `json:"completed"`
}

type checkInHistoryResponse struct {
	UserID   int64           `json:"user_id"`
	CheckIns []checkInRecord `json:"check_ins"`
}

func (h *Handler) handleCheckInHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	checkIns, err := h.checkInRepo.GetSince(r.Context(), userID, since)
	if err != nil {
		h.logger.Errorw("check-in history failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get check-in history")
		return
	}

	records := make([]checkInRecord, 0, len(checkIns))
	for _, c := range checkIns {
		records = append(records, checkInRecord{CheckInTime: c.CheckInTime, Completed: c.Completed})
	}

	writeJSON(w, http.StatusOK, checkInHistoryResponse{UserID: userID, CheckIns: records})
}

// --- /api/v1/users/{id}/reminders ---

type reminderRequest struct {
	Time  string   `json:"time,omitempty"`
	Times []string `json:"times,omitempty"`
}

type remindersResponse struct {
	Reminders []string `json:"reminders"`
}

func (h *Handler) handleListReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	times, err := h.reminders.ListReminders(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("reminder list failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}

	writeJSON(w, http.StatusOK, remindersResponse{Reminders: times})
}

func (h *Handler) handleSetReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// A "times" array replaces the whole set; "time" adds one slot.
	if len(req.Times) > 0 {
		slots, err := h.reminders.ReplaceReminders(r.Context(), userID, req.Times)
		if err != nil {
			if errors.Is(err, entity.ErrInvalidTimeOfDay) {
				writeError(w, http.StatusBadRequest, "times must be HH:MM in 24-hour format")
				return
			}
			h.logger.Errorw("reminder replace failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to set reminders")
			return
		}
		formatted := make([]string, 0, len(slots))
		for _, s := range slots {
			formatted = append(formatted, s.String())
		}
		writeJSON(w, http.StatusOK, remindersResponse{Reminders: formatted})
		return
	}

	slot, err := h.reminders.SetReminder(r.Context(), userID, req.Time)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidTimeOfDay) {
			writeError(w, http.StatusBadRequest, "time must be HH:MM in 24-hour format")
			return
		}
		h.logger.Errorw("reminder set failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set reminder")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"time": slot.String()})
}

func (h *Handler) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	existed, err := h.reminders.DeleteReminder(r.Context(), userID, req.Time)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidTimeOfDay) {
			writeError(w, http.StatusBadRequest, "time must be HH:MM in 24-hour format")
			return
		}
		h.logger.Errorw("reminder delete failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- /api/v1/users/{id}/timezone and /language ---

type timezoneRequest struct {
	Timezone string `json:"timezone"`
}

func (h *Handler) handleSetTimezone(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req timezoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Timezone == "" {
		writeError(w, http.StatusBadRequest, "timezone is required")
		return
	}

	if err := h.userRepo.UpdateTimezone(r.Context(), userID, req.Timezone); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Errorw("timezone update failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update timezone")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"timezone": req.Timezone})
}

type languageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Language != entity.LanguageEnglish && req.Language != entity.LanguageArabic {
		writeError(w, http.StatusBadRequest, "language must be \"en\" or \"ar\"")
		return
	}

	if err := h.userRepo.UpdateLanguage(r.Context(), userID, req.Language); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Errorw("language update failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update language")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}

// --- /api/v1/tafsir ---

type tafsirRequest struct {
	Query    string `json:"query,omitempty"`
	Image    string `json:"image,omitempty"` // base64
	MimeType string `json:"mime_type,omitempty"`
	Language string `json:"language,omitempty"`
}

type tafsirResponse struct {
	SurahName   string  `json:"surah_name"`
	SurahNumber int     `json:"surah_number"`
	AyahNumber  int     `json:"ayah_number"`
	ArabicText  string  `json:"arabic_text"`
	Tafsir      string  `json:"tafsir"`
	Confidence  float64 `json:"confidence"`
}

func (h *Handler) handleTafsir(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	var req tafsirRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	language := req.Language
	if language == "" {
		language = entity.LanguageArabic
	}

	var result *entity.TafsirResult
	var err error
	switch {
	case req.Query != "":
		result, err = h.tafsir.LookupText(r.Context(), req.Query, language)
	case req.Image != "":
		var image []byte
		image, err = decodeBase64(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, "image must be base64 encoded")
			return
		}
		result, err = h.tafsir.LookupImage(r.Context(), image, req.MimeType, language)
	default:
		writeError(w, http.StatusBadRequest, "query or image is required")
		return
	}

	if err != nil {
		if errors.Is(err, gemini.ErrVerseNotIdentified) {
			writeError(w, http.StatusUnprocessableEntity, "could not identify a Quranic verse in the input")
			return
		}
		h.logger.Errorw("tafsir lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, "tafsir lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, tafsirResponse{
		SurahName:   result.SurahName,
		SurahNumber: result.SurahNumber,
		AyahNumber:  result.AyahNumber,
		ArabicText:  result.ArabicText,
		Tafsir:      result.Tafsir,
		Confidence:  result.Confidence,
	})
}

// --- /health ---

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers ---

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
