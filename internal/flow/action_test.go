package flow

import (
	"errors"
	"testing"
)

func TestParseActionStudent(t *testing.T) {
	cases := []struct {
		data string
		want Action
	}{
		{"student:begin", Action{Kind: KindStudentBegin}},
		{"student:back:email", Action{Kind: KindStudentBack, FieldKey: "email"}},
		{"student:redDiploma:undecided", Action{Kind: KindStudentChoice, FieldKey: "redDiploma", Choice: "undecided"}},
		{"student:scienceInterest:maybe", Action{Kind: KindStudentChoice, FieldKey: "scienceInterest", Choice: "maybe"}},
		{"student:confirm:send", Action{Kind: KindStudentConfirmSend}},
		{"student:confirm:back", Action{Kind: KindStudentConfirmBack}},
		{"student:confirm:editmenu:2", Action{Kind: KindStudentEditMenu, Page: 2}},
		{"student:edit:thesisTopic", Action{Kind: KindStudentEditField, FieldKey: "thesisTopic"}},
		{"student:menu:view", Action{Kind: KindStudentMenuView}},
		{"student:menu:cancel", Action{Kind: KindStudentMenuCancel}},
		{"student:answer:yes", Action{Kind: KindStudentAnswer, Answer: true}},
		{"student:answer:no", Action{Kind: KindStudentAnswer, Answer: false}},
		{"noop", Action{Kind: KindNoop}},
	}
	for _, tc := range cases {
		got, err := ParseAction(tc.data)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.data, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %+v, want %+v", tc.data, got, tc.want)
		}
	}
}

func TestParseActionAdmin(t *testing.T) {
	got, err := ParseAction("admin:decide:doc-1:approved:pending:1")
	if err != nil {
		t.Fatalf("parse decide: %v", err)
	}
	want := Action{Kind: KindAdminDecide, DocID: "doc-1", Decision: "approved", BackStatus: "pending", Page: 1}
	if got != want {
		t.Fatalf("decide: got %+v, want %+v", got, want)
	}
	if !got.IsAdmin() {
		t.Fatalf("decide must be an admin action")
	}

	got, err = ParseAction("admin:toggle_reply:doc-2:rejected:on")
	if err != nil {
		t.Fatalf("parse toggle: %v", err)
	}
	if got.Kind != KindAdminToggleReply || !got.AllowReply || got.BackStatus != "rejected" {
		t.Fatalf("unexpected toggle action: %+v", got)
	}
}

// Устаревшие и битые токены должны давать ErrUnknownAction, а не панику
// или случайное действие.
func TestParseActionFailsClosed(t *testing.T) {
	for _, data := range []string{
		"",
		"student",
		"student:unknown",
		"student:back:noSuchField",
		"student:redDiploma:perhaps",
		"student:confirm:editmenu:zero",
		"admin:decide:doc-1:maybe:pending:1",
		"admin:decide:doc-1:approved:pending",
		"admin:show:archived",
		"admin:toggle_reply:doc-1:pending:enable",
		"legacy:button:1",
	} {
		if _, err := ParseAction(data); !errors.Is(err, ErrUnknownAction) {
			t.Fatalf("parse %q: expected ErrUnknownAction, got %v", data, err)
		}
	}
}
