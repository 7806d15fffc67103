package bot

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestPrepareDestination(t *testing.T) {
	tests := []struct {
		name       string
		recipients string
		want       []Recipient
		wantErr    bool
	}{
		{
			name:       "chat and thread",
			recipients: "123456,789",
			want:       []Recipient{{User: tele.User{ID: 123456}, ThreadID: 789}},
		},
		{
			name:       "several, thread optional",
			recipients: "-1001,5; 42",
			want: []Recipient{
				{User: tele.User{ID: -1001}, ThreadID: 5},
				{User: tele.User{ID: 42}},
			},
		},
		{
			name:       "empty",
			recipients: "",
			want:       []Recipient{},
		},
		{name: "bad chat id", recipients: "chat,1", wantErr: true},
		{name: "bad thread id", recipients: "1,thread", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := prepareDestination(tt.recipients)
			if tt.wantErr {
				if err == nil {
					t.Errorf("prepareDestination(%q) error = nil", tt.recipients)
				}
				return
			}
			if err != nil {
				t.Fatalf("prepareDestination(%q) error = %v", tt.recipients, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("prepareDestination(%q) = %v, want %v", tt.recipients, got, tt.want)
			}
			for i := range got {
				if got[i].User.ID != tt.want[i].User.ID || got[i].ThreadID != tt.want[i].ThreadID {
					t.Errorf("recipient %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewBot_Offline(t *testing.T) {
	b, err := newBot(tele.Settings{Token: "test_token", Offline: true}, "1,2")
	if err != nil {
		t.Fatalf("newBot() error = %v", err)
	}
	if len(b.destination) != 1 {
		t.Errorf("destination = %v", b.destination)
	}
	if err = (&Bot{bot: b.bot}).Send([]string{"text"}); err != nil {
		t.Errorf("Send() without recipients error = %v", err)
	}
}

func TestNewBot_InvalidRecipients(t *testing.T) {
	if _, err := newBot(tele.Settings{Token: "test_token", Offline: true}, "x"); err == nil {
		t.Error("newBot() with invalid recipients error = nil")
	}
}
