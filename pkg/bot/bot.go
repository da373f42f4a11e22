package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"proxedu/config"
	"proxedu/pkg/logger"
)

// Verifier confirms a registration code for the chat that sent it.
type Verifier interface {
	Verify(ctx context.Context, code string, chatID int64) (*Verification, error)
}

// Verification is the outcome of a verify call the backend answered.
// Accepted=false carries the backend's reason in Message.
type Verification struct {
	Accepted bool
	Message  string
}

// Audience lists chats that linked their Telegram account.
type Audience interface {
	ChatIDs(ctx context.Context) ([]int64, error)
}

type Bot struct {
	Bot      *tele.Bot
	Log      logger.ILogger
	Cfg      config.Config
	verifier Verifier
	audience Audience
}

const requestTimeout = 10 * time.Second

var messages = map[string]map[string]string{
	"uz": {
		"welcome": "🎉 Xush kelibsiz, %s!\n\n" +
			"✅ Ro'yxatdan o'tish muvaffaqiyatli yakunlandi!\n\n" +
			"Endi siz barcha kurslarga kirish huquqiga egasiz!\n" +
			"💬 Bu bot orqali muhim bildirishnomalarni olasiz.\n\n" +
			"Saytga kirish uchun quyidagi tugmani bosing:",
		"login_button": "Saytga kirish",
		"rejected":     "❌ %s\n\n💡 Yangi kod olish uchun saytga qaytib, qaytadan ro'yxatdan o'ting.",
		"bad_code":     "Kod noto'g'ri yoki muddati tugagan.",
		"server_error": "❌ Server bilan bog'lanishda xatolik yuz berdi.\n\n🔄 Iltimos, biroz kutib qaytadan urinib ko'ring.",
		"legacy_code":  "⚠️ Eski kod formati. Iltimos, saytdan yangi kod oling va qaytadan urinib ko'ring.",
		"help": "👋 Salom, %s!\n\n" +
			"🎓 ProX Education platformasiga xush kelibsiz!\n\n" +
			"📝 Ro'yxatdan o'tish uchun:\n" +
			"1. Saytga o'ting\n" +
			"2. Ro'yxatdan o'tish formasini to'ldiring\n" +
			"3. Telegram orqali tasdiqlash kodini oling\n\n" +
			"💡 Agar sizda kod bo'lsa, /start KODINGIZ formatida yuboring",
		"default_name":   "Foydalanuvchi",
		"no_permission":  "Sizda ruxsat yo'q.",
		"no_audience":    "Bildirishnoma yuborish bu rejimda mavjud emas.",
		"notify_usage":   "Foydalanish: /notify <matn>",
		"notify_done":    "Bildirishnoma %d ta foydalanuvchiga yuborildi.",
		"notify_partial": "Bildirishnoma %d ta foydalanuvchiga yuborildi, %d tasiga yetib bormadi.",
	},
}

func New(cfg config.Config, verifier Verifier, audience Audience, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram handler failed", logger.Error(err))
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		Bot:      b,
		Log:      log,
		Cfg:      cfg,
		verifier: verifier,
		audience: audience,
	}
	bot.registerHandlers()
	return bot, nil
}

// Start blocks until Stop is called.
func (b *Bot) Start() {
	b.Log.Info(fmt.Sprintf("🤖 @%s bot started", b.Bot.Me.Username))
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

// SendToChat lets the backend message a user in Telegram.
func (b *Bot) SendToChat(ctx context.Context, chatID int64, text string) error {
	_, err := b.Bot.Send(tele.ChatID(chatID), text)
	return err
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle("/notify", b.handleNotify)
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	r := b.startReply(ctx, c.Message().Payload, c.Chat().ID, displayName(c.Sender()))
	if r.buttonURL == "" {
		return c.Send(r.text)
	}
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.URL(messages["uz"]["login_button"], r.buttonURL)))
	return c.Send(r.text, markup)
}

func (b *Bot) handleNotify(c tele.Context) error {
	if b.Cfg.AdminID == 0 || c.Sender().ID != b.Cfg.AdminID {
		return c.Send(messages["uz"]["no_permission"])
	}
	if b.audience == nil {
		return c.Send(messages["uz"]["no_audience"])
	}
	text := strings.TrimSpace(c.Message().Payload)
	if text == "" {
		return c.Send(messages["uz"]["notify_usage"])
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sent, failed, err := b.broadcast(ctx, text, b.SendToChat)
	if err != nil {
		b.Log.Error("broadcast failed", logger.Error(err))
		return c.Send(messages["uz"]["server_error"])
	}
	if failed > 0 {
		return c.Send(fmt.Sprintf(messages["uz"]["notify_partial"], sent, failed))
	}
	return c.Send(fmt.Sprintf(messages["uz"]["notify_done"], sent))
}

func (b *Bot) broadcast(ctx context.Context, text string, send func(ctx context.Context, chatID int64, text string) error) (sent, failed int, err error) {
	ids, err := b.audience.ChatIDs(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		if err := send(ctx, id, text); err != nil {
			b.Log.Warning("notify: send failed", logger.Int64("chat_id", id), logger.Error(err))
			failed++
			continue
		}
		sent++
	}
	b.Log.Info("admin broadcast", logger.Int("sent", sent), logger.Int("failed", failed))
	return sent, failed, nil
}

func displayName(u *tele.User) string {
	if u == nil || u.FirstName == "" {
		return messages["uz"]["default_name"]
	}
	return u.FirstName
}
