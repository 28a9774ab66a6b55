package service

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
)

type messageService struct {
	templateRepo repository.TemplateRepository
	logger       *zap.SugaredLogger

	// pick selects an index in [0,n); replaced in tests for determinism.
	pick func(n int) int
}

// NewMessageService creates the template selector.
func NewMessageService(templateRepo repository.TemplateRepository, logger *zap.SugaredLogger) service.MessageService {
	return &messageService{
		templateRepo: templateRepo,
		logger:       logger,
		pick:         rand.Intn,
	}
}

// Threshold maps a day count onto the largest bucket not exceeding it.
func (s *messageService) Threshold(days int32, isReward bool) int32 {
	if isReward {
		switch {
		case days >= 30:
			return 30
		case days >= 7:
			return 7
		default:
			return 1
		}
	}
	switch {
	case days >= 30:
		return 30
	case days >= 7:
		return 7
	case days >= 5:
		return 5
	case days >= 3:
		return 3
	default:
		return 1
	}
}

func (s *messageService) StreakMessage(ctx context.Context, user *entity.User) string {
	lang := user.LanguageOrDefault()
	header := streakHeader(user, lang)

	switch {
	case user.CurrentStreak > 0:
		body := s.templateBody(ctx, entity.TemplateTypeReward, s.Threshold(user.CurrentStreak, true), lang)
		if body == "" {
			body = rewardFallback(user.CurrentStreak, lang)
		}
		return header + body
	case user.ReverseStreak > 0:
		body := s.templateBody(ctx, entity.TemplateTypeWarning, s.Threshold(user.ReverseStreak, false), lang)
		if body == "" {
			body = warningFallback(user.ReverseStreak, lang)
		}
		return header + body
	default:
		return header + startFallback(lang)
	}
}

func (s *messageService) ReminderMessage(ctx context.Context, user *entity.User) string {
	lang := user.LanguageOrDefault()
	header := streakHeader(user, lang)

	var invite string
	if lang == entity.LanguageEnglish {
		invite = "Time for your daily Quran reading! 🕌 Send a checkmark ✅ when you're done."
	} else {
		invite = "حان وقت قراءة وردك اليومي من القرآن! 🕌 أرسل ✅ عند الانتهاء من القراءة."
	}

	// Add templated copy matching the user's current state for variety.
	var body string
	if user.CurrentStreak > 0 {
		body = s.templateBody(ctx, entity.TemplateTypeReward, s.Threshold(user.CurrentStreak, true), lang)
	} else if user.ReverseStreak > 0 {
		body = s.templateBody(ctx, entity.TemplateTypeWarning, s.Threshold(user.ReverseStreak, false), lang)
	}

	if body == "" {
		return header + invite
	}
	return header + invite + "\n\n" + body
}

func (s *messageService) EndOfDayMessage(ctx context.Context, user *entity.User) string {
	lang := user.LanguageOrDefault()

	switch {
	case user.CurrentStreak > 0:
		var header, cta string
		if lang == entity.LanguageEnglish {
			header = "⚠️ *Streak Break Alert*\n\n"
			cta = fmt.Sprintf(
				"\n\nYour %d-day streak will break at midnight. You still have time to read and send a checkmark to maintain your streak! ✅",
				user.CurrentStreak,
			)
		} else {
			header = "⚠️ *تنبيه انقطاع القراءة*\n\n"
			cta = fmt.Sprintf(
				"\n\nسلسلة قراءتك المستمرة لمدة %d أيام ستنقطع عند منتصف الليل. ما زال لديك وقت للقراءة وإرسال علامة اختيار للحفاظ على سلسلتك! ✅",
				user.CurrentStreak,
			)
		}

		// The user is on day zero of missing; warn with the 1-day bucket.
		body := s.templateBody(ctx, entity.TemplateTypeWarning, 1, lang)
		if body == "" {
			body = warningFallback(1, lang)
		}
		return header + body + cta

	case user.ReverseStreak > 0:
		var header string
		if lang == entity.LanguageEnglish {
			header = "📖 *Daily Reading Reminder*\n\n"
		} else {
			header = "📖 *تذكير القراءة اليومية*\n\n"
		}

		body := s.templateBody(ctx, entity.TemplateTypeWarning, s.Threshold(user.ReverseStreak, false), lang)
		if body == "" {
			body = warningFallback(user.ReverseStreak, lang)
		}
		return header + body

	default:
		// Nothing to protect and nothing missed yet; stay quiet.
		return ""
	}
}

// templateBody fetches a template at the exact bucket, falling back to any
// template of the type. Multiple matches are chosen uniformly at random.
// Returns "" when no usable template exists.
func (s *messageService) templateBody(ctx context.Context, templateType entity.TemplateType, threshold int32, lang string) string {
	templates, err := s.templateRepo.GetByTypeAndThreshold(ctx, templateType, threshold)
	if err != nil {
		s.logger.Warnw("failed to fetch templates", "type", templateType, "threshold", threshold, "error", err)
		return ""
	}
	if len(templates) == 0 {
		templates, err = s.templateRepo.GetByType(ctx, templateType)
		if err != nil {
			s.logger.Warnw("failed to fetch fallback templates", "type", templateType, "error", err)
			return ""
		}
	}
	if len(templates) == 0 {
		return ""
	}

	tmpl := templates[s.pick(len(templates))]
	text := tmpl.Text(lang)
	message := tmpl.Message(lang)

	switch {
	case text != "" && message != "":
		return text + "\n\n" + message
	case text != "":
		return text
	default:
		return message
	}
}

func streakHeader(user *entity.User, lang string) string {
	switch {
	case user.CurrentStreak > 0:
		if lang == entity.LanguageEnglish {
			return fmt.Sprintf("🔥 *Your current streak: %d days*\n\n", user.CurrentStreak)
		}
		return fmt.Sprintf("🔥 *لديك سلسلة قراءة مستمرة منذ %d أيام*\n\n", user.CurrentStreak)
	case user.ReverseStreak > 0:
		if lang == entity.LanguageEnglish {
			return fmt.Sprintf("⚠️ *Days of inactivity: %d days*\n\n", user.ReverseStreak)
		}
		return fmt.Sprintf("⚠️ *أيام الانقطاع: %d أيام*\n\n", user.ReverseStreak)
	default:
		if lang == entity.LanguageEnglish {
			return "📚 *Start your reading streak today!*\n\n"
		}
		return "📚 *ابدأ سلسلة القراءة الخاصة بك اليوم!*\n\n"
	}
}

func rewardFallback(days int32, lang string) string {
	if lang == entity.LanguageEnglish {
		return fmt.Sprintf("Amazing! You've maintained your Quran reading streak for %d days! 🎉", days)
	}
	return fmt.Sprintf("رائع! لقد حافظت على سلسلة قراءة القرآن لمدة %d أيام! 🎉", days)
}

func warningFallback(days int32, lang string) string {
	if lang == entity.LanguageEnglish {
		return fmt.Sprintf("Don't worry! It's been %d days since your last check-in. You can start again today! 📖", days)
	}
	return fmt.Sprintf("لا تقلق! لقد مرت %d أيام منذ آخر تسجيل دخول. يمكنك البدء مرة أخرى اليوم! 📖", days)
}

func startFallback(lang string) string {
	if lang == entity.LanguageEnglish {
		return "Ready to start your Quran reading journey? Send a checkmark when you're done! 📚"
	}
	return "هل أنت مستعد لبدء رحلة قراءة القرآن؟ أرسل علامة اختيار عندما تنتهي! 📚"
}
