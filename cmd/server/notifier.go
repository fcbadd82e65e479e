package main

import (
	"errors"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/config"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/devotp"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/sms"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify/telegram"
)

// buildNotifier returns the configured delivery channel. The dev store is non-nil when codes should
// also be readable over HTTP (NOTIFIER=dev or OTP_RETURN_TO_CLIENT=true).
func buildNotifier(cfg *config.Config) (notify.Notifier, *devotp.MemoryStore, error) {
	var devStore *devotp.MemoryStore
	if cfg.Notifier == config.NotifierDev || cfg.OTPReturnToClient {
		devStore = devotp.NewMemoryStore()
	}

	var primary notify.Notifier
	switch cfg.Notifier {
	case config.NotifierTelegram:
		if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
			return nil, nil, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when NOTIFIER=telegram")
		}
		primary = telegram.NewBotNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramThreadID,
			cfg.TelegramBaseURL, cfg.NotifyLocation())
	case config.NotifierSMS:
		if cfg.SMSLocalAPIKey == "" {
			return nil, nil, errors.New("SMS_LOCAL_API_KEY is required when NOTIFIER=sms")
		}
		primary = sms.NewSMSLocalClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
	case config.NotifierDev:
		return devotp.NewNotifier(devStore), devStore, nil
	default:
		return nil, nil, errors.New("unknown notifier " + cfg.Notifier)
	}

	if devStore != nil {
		return notify.Multi{devotp.NewNotifier(devStore), primary}, devStore, nil
	}
	return primary, nil, nil
}
