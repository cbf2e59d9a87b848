package engine

import (
	"fmt"
	"html"

	"github.com/truemoder/truemoder/automod/chat"
)

// User-facing texts (HTML parse mode).
const (
	FloodLockMessage     = "<b>Не надо флудить!</b>"
	WarnMessage          = "Ай-ай-ай, %s!"
	MuteWarnMessage      = "%s, я же тебя предупреждал... Иди молчать."
	BanWarnMessage       = "%s, я же тебя предупреждал... Иди в бан."
	ReplyRequiredMessage = "Эту команду нужно использовать в ответ на чьё-то сообщение"
	DoneMessage          = "Готово! :)"
	CantSanctionMessage  = "Извините, не получилось: у меня не хватает прав, или это администратор чата."

	StartMessage = "<b>Привет, я бот-модератор!</b> \n" +
		"Добавь меня в чат, чтобы навести там порядок"
	AddToChatButton = "Добавить модератора в чат"

	WelcomeMessage = "<b>Привет! Я бот-модератор!</b> \n\n" +
		"Чтобы я смог следить за этой группой, мне нужно дать следующие права администратора: \n" +
		"- удалять сообщения; \n" +
		"- блокировать пользователей; \n" +
		"- закреплять сообщения. \n\n" +
		"Подробности в описании:"
	WelcomeButton = "ℹ️ Описание"

	GroupOnlyMessage = "<b>Привет! Я бот-модератор!</b> \n\n" +
		"Я умею работать только в <i>супергруппах</i> \n" +
		"Преобразовать эту группу в супергруппу можно в настройках группы."

	MigratedMessage = "<b>Отлично!</b> \n\n" +
		"Теперь для начала работы требуется дать мне следующие права администратора: \n" +
		"- удалять сообщения; \n" +
		"- блокировать пользователей \n" +
		"- закреплять сообщения. \n\n" +
		"Подробности в разделе Установка:"
	MigratedButton = "ℹ️ Инструкция"
)

// HTML mention of a user, rendered by chat clients as a link to their profile.
func UserLink(u *chat.User) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(u.FullName()))
}
