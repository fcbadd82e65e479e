package main

import (
	"testing"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/config"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/devotp"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/sms"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/telegram"
)

func TestBuildNotifier(t *testing.T) {
	t.Run("telegram", func(t *testing.T) {
		n, store, err := buildNotifier(&config.Config{Notifier: config.NotifierTelegram, TelegramBotToken: "t", TelegramChatID: "c", NotifyTimezone: "UTC"})
		if err != nil {
			t.Fatalf("buildNotifier: %v", err)
		}
		if _, ok := n.(*telegram.BotNotifier); !ok {
			t.Errorf("notifier = %T, want *telegram.BotNotifier", n)
		}
		if store != nil {
			t.Error("dev store should be nil")
		}
	})
	t.Run("telegram missing token", func(t *testing.T) {
		if _, _, err := buildNotifier(&config.Config{Notifier: config.NotifierTelegram}); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("sms", func(t *testing.T) {
		n, _, err := buildNotifier(&config.Config{Notifier: config.NotifierSMS, SMSLocalAPIKey: "k"})
		if err != nil {
			t.Fatalf("buildNotifier: %v", err)
		}
		if _, ok := n.(*sms.SMSLocalClient); !ok {
			t.Errorf("notifier = %T, want *sms.SMSLocalClient", n)
		}
	})
	t.Run("sms missing key", func(t *testing.T) {
		if _, _, err := buildNotifier(&config.Config{Notifier: config.NotifierSMS}); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("dev", func(t *testing.T) {
		n, store, err := buildNotifier(&config.Config{Notifier: config.NotifierDev})
		if err != nil {
			t.Fatalf("buildNotifier: %v", err)
		}
		if _, ok := n.(*devotp.Notifier); !ok {
			t.Errorf("notifier = %T, want *devotp.Notifier", n)
		}
		if store == nil {
			t.Error("dev store should be set")
		}
	})
	t.Run("return to client wraps primary", func(t *testing.T) {
		n, store, err := buildNotifier(&config.Config{Notifier: config.NotifierSMS, SMSLocalAPIKey: "k", OTPReturnToClient: true})
		if err != nil {
			t.Fatalf("buildNotifier: %v", err)
		}
		if m, ok := n.(notify.Multi); !ok || len(m) != 2 {
			t.Errorf("notifier = %T, want notify.Multi of 2", n)
		}
		if store == nil {
			t.Error("dev store should be set")
		}
	})
	t.Run("unknown", func(t *testing.T) {
		if _, _, err := buildNotifier(&config.Config{Notifier: "pigeon"}); err == nil {
			t.Error("expected error")
		}
	})
}
