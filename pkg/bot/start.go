package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"proxedu/pkg/logger"
)

type payloadKind int

const (
	payloadNone payloadKind = iota
	payloadCode
	payloadLegacy
	payloadUnknown
)

var (
	codePattern   = regexp.MustCompile(`^[A-Z0-9]{8}$`)
	legacyPattern = regexp.MustCompile(`^\d{6}$`)
)

func parseStartPayload(payload string) (payloadKind, string) {
	p := strings.TrimSpace(payload)
	switch {
	case p == "":
		return payloadNone, ""
	case codePattern.MatchString(p):
		return payloadCode, p
	case legacyPattern.MatchString(p):
		return payloadLegacy, p
	}
	return payloadUnknown, p
}

type reply struct {
	text      string
	buttonURL string
}

func (b *Bot) startReply(ctx context.Context, payload string, chatID int64, name string) reply {
	kind, code := parseStartPayload(payload)
	switch kind {
	case payloadLegacy:
		return reply{text: messages["uz"]["legacy_code"]}
	case payloadCode:
	default:
		return reply{text: fmt.Sprintf(messages["uz"]["help"], name)}
	}

	b.Log.Info("registration code received", logger.String("code", code), logger.Int64("chat_id", chatID))
	res, err := b.verifier.Verify(ctx, code, chatID)
	if err != nil {
		b.Log.Error("verification request failed", logger.String("code", code), logger.Error(err))
		return reply{text: messages["uz"]["server_error"]}
	}
	if !res.Accepted {
		msg := res.Message
		if msg == "" {
			msg = messages["uz"]["bad_code"]
		}
		return reply{text: fmt.Sprintf(messages["uz"]["rejected"], msg)}
	}
	return reply{
		text:      fmt.Sprintf(messages["uz"]["welcome"], name),
		buttonURL: strings.TrimRight(b.Cfg.SiteURL, "/") + "/#login",
	}
}
