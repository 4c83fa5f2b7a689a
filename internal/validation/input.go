package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/roastblame-backend/internal/models"
)

// Константы валидации
const (
	MaxPostContentLength   = 500
	MaxCelebrityNameLength = 100
	MaxImageSize           = 5 << 20
	MaxVideoSize           = 10 << 20
	MaxReportDetailsLength = 1000
	MaxAdminNotesLength    = 1000
	MaxBanReasonLength     = 500
	MaxSiteNameLength      = 100
	MaxSiteDescLength      = 500
	MaxGuidelinesLength    = 5000
	MaxExternalLinkLength  = 500
	MaxNFTNameLength       = 100
	MaxNFTRoyalty          = 50
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	hexColorRegex    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// NormalizeEmail приводит email к каноническому виду.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidatePostContent проверяет текст роаста. Ожидает уже обрезанную строку.
func ValidatePostContent(content string) error {
	if content == "" {
		return fmt.Errorf("текст поста не может быть пустым")
	}
	return ValidateLength("текст поста", content, 1, MaxPostContentLength)
}

// ValidateCelebrityName проверяет имя знаменитости.
func ValidateCelebrityName(name string) error {
	if name == "" {
		return fmt.Errorf("имя знаменитости обязательно")
	}
	return ValidateLength("имя знаменитости", name, 1, MaxCelebrityNameLength)
}

// ValidateReport проверяет причину и подробности жалобы.
func ValidateReport(reason string, details *string) error {
	if _, ok := models.ValidReportReasons[reason]; !ok {
		return fmt.Errorf("недопустимая причина жалобы: %s", reason)
	}
	var text string
	if details != nil {
		text = strings.TrimSpace(*details)
	}
	if reason == models.ReportReasonOther && text == "" {
		return fmt.Errorf("для причины other нужно описание")
	}
	return ValidateLength("описание жалобы", text, 0, MaxReportDetailsLength)
}

// ValidateReviewDecision проверяет решение по жалобе.
func ValidateReviewDecision(status, notes string) error {
	if status != models.ReportStatusResolved && status != models.ReportStatusDismissed {
		return fmt.Errorf("решение должно быть resolved или dismissed")
	}
	if err := ValidateNonEmpty("комментарий модератора", notes); err != nil {
		return err
	}
	return ValidateLength("комментарий модератора", notes, 0, MaxAdminNotesLength)
}

// ValidateBanReason проверяет причину блокировки.
func ValidateBanReason(reason string) error {
	if err := ValidateNonEmpty("причина блокировки", reason); err != nil {
		return err
	}
	return ValidateLength("причина блокировки", reason, 0, MaxBanReasonLength)
}

// ValidateSettings проверяет настройки сайта.
func ValidateSettings(s models.Settings) error {
	if err := ValidateNonEmpty("название сайта", s.SiteName); err != nil {
		return err
	}
	if err := ValidateLength("название сайта", s.SiteName, 0, MaxSiteNameLength); err != nil {
		return err
	}
	if err := ValidateLength("описание сайта", s.SiteDescription, 0, MaxSiteDescLength); err != nil {
		return err
	}
	if err := ValidateLength("правила сообщества", s.GuidelinesText, 0, MaxGuidelinesLength); err != nil {
		return err
	}
	if !hexColorRegex.MatchString(s.PrimaryColor) {
		return fmt.Errorf("основной цвет должен быть в формате #rrggbb")
	}
	if !hexColorRegex.MatchString(s.SecondaryColor) {
		return fmt.Errorf("дополнительный цвет должен быть в формате #rrggbb")
	}
	if _, ok := models.ValidModerationLevels[s.AutoModerationLevel]; !ok {
		return fmt.Errorf("уровень модерации должен быть low, medium или high")
	}
	if s.LogoURL != "" {
		if err := ValidateExternalLink(s.LogoURL); err != nil {
			return err
		}
	}
	return nil
}

// ValidateExternalLink проверяет внешнюю ссылку.
func ValidateExternalLink(link string) error {
	link = strings.TrimSpace(link)
	if err := ValidateLength("внешняя ссылка", link, 0, MaxExternalLinkLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}

// ValidateNFT проверяет параметры выпуска NFT.
func ValidateNFT(name string, royalty int) error {
	if err := ValidateNonEmpty("название NFT", name); err != nil {
		return err
	}
	if err := ValidateLength("название NFT", name, 0, MaxNFTNameLength); err != nil {
		return err
	}
	if royalty < 0 || royalty > MaxNFTRoyalty {
		return fmt.Errorf("роялти должно быть от 0 до %d процентов", MaxNFTRoyalty)
	}
	return nil
}
