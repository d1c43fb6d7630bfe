package flow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction возвращается для токена, который не удалось разобрать.
// Такие нажатия (устаревшие кнопки) гасятся алертом, а не ошибкой процесса.
var ErrUnknownAction = errors.New("flow: unknown action")

// Kind — тип действия, закодированного в callback-токене.
type Kind int

const (
	KindNoop Kind = iota

	KindStudentBegin
	KindStudentBack
	KindStudentChoice
	KindStudentConfirmSend
	KindStudentConfirmBack
	KindStudentEditMenu
	KindStudentEditField
	KindStudentMenuView
	KindStudentMenuEdit
	KindStudentMenuCancel
	KindStudentMenuBack
	KindStudentMenuAnswer
	KindStudentAnswer

	KindAdminMenu
	KindAdminShow
	KindAdminView
	KindAdminDecide
	KindAdminNote
	KindAdminToggleReply
	KindAdminAsk
	KindAdminSearch
	KindAdminBack
)

// Action — разобранный callback-токен. Поля заполняются по виду действия.
type Action struct {
	Kind Kind

	FieldKey   string // back / edit / choice
	Choice     string // redDiploma, scienceInterest
	Answer     bool   // student:answer:yes|no
	Page       int    // editmenu
	DocID      string
	Decision   string // approved | rejected
	Status     string // show / search / back
	BackStatus string
	AllowReply bool // toggle_reply on|off
}

// IsAdmin сообщает, относится ли действие к панели администратора.
func (a Action) IsAdmin() bool {
	return a.Kind >= KindAdminMenu
}

// ParseAction разбирает колон-разделенный токен кнопки в типизированное
// действие. Неизвестный или битый токен дает ErrUnknownAction.
func ParseAction(data string) (Action, error) {
	if data == "noop" {
		return Action{Kind: KindNoop}, nil
	}

	parts := strings.Split(data, ":")
	switch parts[0] {
	case "student":
		return parseStudent(data, parts)
	case "admin":
		return parseAdmin(data, parts)
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

func parseStudent(data string, parts []string) (Action, error) {
	if len(parts) < 2 {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}
	switch parts[1] {
	case "begin":
		return Action{Kind: KindStudentBegin}, nil
	case "back":
		if len(parts) == 3 && knownField(parts[2]) {
			return Action{Kind: KindStudentBack, FieldKey: parts[2]}, nil
		}
	case "redDiploma", "scienceInterest":
		if len(parts) == 3 && validChoice(parts[1], parts[2]) {
			return Action{Kind: KindStudentChoice, FieldKey: parts[1], Choice: parts[2]}, nil
		}
	case "confirm":
		if len(parts) == 3 {
			switch parts[2] {
			case "send":
				return Action{Kind: KindStudentConfirmSend}, nil
			case "back":
				return Action{Kind: KindStudentConfirmBack}, nil
			}
		}
		if len(parts) == 4 && parts[2] == "editmenu" {
			page, err := strconv.Atoi(parts[3])
			if err == nil && page >= 1 {
				return Action{Kind: KindStudentEditMenu, Page: page}, nil
			}
		}
	case "edit":
		if len(parts) == 3 && knownField(parts[2]) {
			return Action{Kind: KindStudentEditField, FieldKey: parts[2]}, nil
		}
	case "menu":
		if len(parts) == 3 {
			switch parts[2] {
			case "view":
				return Action{Kind: KindStudentMenuView}, nil
			case "edit":
				return Action{Kind: KindStudentMenuEdit}, nil
			case "cancel":
				return Action{Kind: KindStudentMenuCancel}, nil
			case "back":
				return Action{Kind: KindStudentMenuBack}, nil
			case "answer":
				return Action{Kind: KindStudentMenuAnswer}, nil
			}
		}
	case "answer":
		if len(parts) == 3 {
			switch parts[2] {
			case "yes":
				return Action{Kind: KindStudentAnswer, Answer: true}, nil
			case "no":
				return Action{Kind: KindStudentAnswer, Answer: false}, nil
			}
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

func parseAdmin(data string, parts []string) (Action, error) {
	if len(parts) < 2 {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}
	switch parts[1] {
	case "menu":
		if len(parts) == 2 {
			return Action{Kind: KindAdminMenu}, nil
		}
	case "show":
		if len(parts) == 3 && validStatus(parts[2]) {
			return Action{Kind: KindAdminShow, Status: parts[2]}, nil
		}
	case "view":
		if len(parts) == 4 && parts[2] != "" && validStatus(parts[3]) {
			return Action{Kind: KindAdminView, DocID: parts[2], Status: parts[3]}, nil
		}
	case "decide":
		if len(parts) == 6 && parts[2] != "" && validStatus(parts[4]) {
			if parts[3] != "approved" && parts[3] != "rejected" {
				break
			}
			page, err := strconv.Atoi(parts[5])
			if err != nil || page < 1 {
				break
			}
			return Action{
				Kind:       KindAdminDecide,
				DocID:      parts[2],
				Decision:   parts[3],
				BackStatus: parts[4],
				Page:       page,
			}, nil
		}
	case "note":
		if len(parts) == 4 && parts[2] != "" && validStatus(parts[3]) {
			return Action{Kind: KindAdminNote, DocID: parts[2], BackStatus: parts[3]}, nil
		}
	case "toggle_reply":
		if len(parts) == 5 && parts[2] != "" && validStatus(parts[3]) {
			switch parts[4] {
			case "on":
				return Action{Kind: KindAdminToggleReply, DocID: parts[2], BackStatus: parts[3], AllowReply: true}, nil
			case "off":
				return Action{Kind: KindAdminToggleReply, DocID: parts[2], BackStatus: parts[3], AllowReply: false}, nil
			}
		}
	case "ask":
		if len(parts) == 4 && parts[2] != "" && validStatus(parts[3]) {
			return Action{Kind: KindAdminAsk, DocID: parts[2], BackStatus: parts[3]}, nil
		}
	case "search":
		if len(parts) == 3 && validStatus(parts[2]) {
			return Action{Kind: KindAdminSearch, Status: parts[2]}, nil
		}
	case "back":
		if len(parts) == 3 && validStatus(parts[2]) {
			return Action{Kind: KindAdminBack, Status: parts[2]}, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

func validStatus(s string) bool {
	switch s {
	case "pending", "approved", "rejected":
		return true
	}
	return false
}

func validChoice(key, choice string) bool {
	for _, opt := range choiceOptions(key) {
		if opt.Value == choice {
			return true
		}
	}
	return false
}
