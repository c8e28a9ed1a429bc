package rental

import "strings"

type messageKey string

const (
	msgNotFound          messageKey = "not_found"
	msgItemOccupied      messageKey = "item_occupied"
	msgGrantOccupied     messageKey = "grant_occupied"
	msgAlreadyQueued     messageKey = "already_queued"
	msgQueueNotSupported messageKey = "queue_not_supported"
	msgDailyCap          messageKey = "daily_cap"
	msgGrantDailyCap     messageKey = "grant_daily_cap"
	msgExtendBlocked     messageKey = "extend_blocked"
	msgRentalClosed      messageKey = "rental_closed"
	msgValidation        messageKey = "validation"
	msgPersistence       messageKey = "persistence"
	msgUserExists        messageKey = "user_exists"
)

func (k messageKey) kind() Kind {
	switch k {
	case msgNotFound:
		return NotFound
	case msgItemOccupied, msgGrantOccupied:
		return ItemOccupied
	case msgAlreadyQueued:
		return AlreadyQueued
	case msgQueueNotSupported:
		return QueueNotSupported
	case msgDailyCap, msgGrantDailyCap:
		return DailyCapExceeded
	case msgExtendBlocked:
		return ExtendBlockedByWaiters
	case msgRentalClosed, msgValidation:
		return ValidationError
	case msgUserExists:
		return AlreadyExists
	default:
		return PersistenceError
	}
}

const DefaultLocale = "en"

var messages = map[string]map[messageKey]string{
	"en": {
		msgNotFound:          "The requested record could not be found.",
		msgItemOccupied:      "This item is currently rented. Please join the waiting list.",
		msgGrantOccupied:     "This item is still rented. Return the current rental before granting the next request.",
		msgAlreadyQueued:     "You are already on the waiting list for this item.",
		msgQueueNotSupported: "This item does not use a waiting list.",
		msgDailyCap:          "You have reached today's rental limit for this item.",
		msgGrantDailyCap:     "The user has reached today's rental limit for this item, so their waiting request was removed.",
		msgExtendBlocked:     "The rental cannot be extended while other people are waiting for this item.",
		msgRentalClosed:      "This rental has already been returned.",
		msgValidation:        "The request is invalid.",
		msgPersistence:       "A storage error occurred. Please try again.",
		msgUserExists:        "A user with this name and phone number is already registered.",
	},
	"ko": {
		msgNotFound:          "요청한 정보를 찾을 수 없습니다.",
		msgItemOccupied:      "현재 대여 중인 물품입니다. 대기 등록을 해 주세요.",
		msgGrantOccupied:     "아직 대여 중인 물품입니다. 현재 대여를 반납 처리한 뒤 승인해 주세요.",
		msgAlreadyQueued:     "이미 이 물품의 대기 목록에 등록되어 있습니다.",
		msgQueueNotSupported: "이 물품은 대기 등록을 지원하지 않습니다.",
		msgDailyCap:          "오늘 이 물품의 대여 가능 횟수를 모두 사용했습니다.",
		msgGrantDailyCap:     "사용자가 오늘 이 물품의 대여 가능 횟수를 모두 사용하여 대기 요청이 삭제되었습니다.",
		msgExtendBlocked:     "대기 중인 사람이 있어 대여를 연장할 수 없습니다.",
		msgRentalClosed:      "이미 반납된 대여입니다.",
		msgValidation:        "요청 값이 올바르지 않습니다.",
		msgPersistence:       "저장소 오류가 발생했습니다. 다시 시도해 주세요.",
		msgUserExists:        "같은 이름과 전화번호로 이미 등록된 사용자가 있습니다.",
	},
}

// localize returns the localized text for key, falling back to English.
func localize(locale string, key messageKey) string {
	if m, ok := messages[normalizeLocale(locale)]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return messages[DefaultLocale][key]
}

// SupportedLocale reports whether messages exist for locale.
func SupportedLocale(locale string) bool {
	_, ok := messages[normalizeLocale(locale)]
	return ok
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}
