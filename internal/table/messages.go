package table

import "fmt"

// Ключи уведомлений таблицы в каталоге переводов UI.
// Тосты передаются Notifier ключом и аргументами и переводятся при выводе.
const (
	MsgCreated        = "table.msg.created"
	MsgUpdated        = "table.msg.updated"
	MsgDeleted        = "table.msg.deleted"
	MsgCreateFailed   = "table.msg.create_failed"
	MsgUpdateFailed   = "table.msg.update_failed"
	MsgDeleteFailed   = "table.msg.delete_failed"
	MsgLoadFailed     = "table.msg.load_failed"
	MsgActionFailed   = "table.msg.action_failed"
	MsgRankingUpdated = "table.msg.ranking_updated"

	// ValidationMessage — не заполнены обязательные поля.
	ValidationMessage = "table.msg.validation"
	// NumberMessage — некорректное числовое поле.
	NumberMessage = "table.msg.number"

	// busyMessage — повторное действие над занятой строкой.
	busyMessage = "table.msg.busy"
)

// englishText — английские шаблоны уведомлений (журнал аудита и логи).
var englishText = map[string]string{
	MsgCreated:        "%s created successfully",
	MsgUpdated:        "%s updated successfully",
	MsgDeleted:        "%s deleted successfully",
	MsgCreateFailed:   "Failed to create %s",
	MsgUpdateFailed:   "Failed to update %s",
	MsgDeleteFailed:   "Failed to delete %s",
	MsgLoadFailed:     "Failed to load %s",
	MsgActionFailed:   "%s failed",
	MsgRankingUpdated: "Ranking updated successfully",
	ValidationMessage: "Please fill in all fields",
	NumberMessage:     "Please enter a valid positive number",
	busyMessage:       "Please wait, the previous request is still in progress",
}

// Text возвращает английский текст уведомления key.
// Ключи вне каталога (сообщения backend) возвращаются как есть.
func Text(key string, args ...any) string {
	tmpl, ok := englishText[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// RegisterText добавляет английские шаблоны уведомлений доменных действий.
// Вызывается из init пакетов, описывающих схемы таблиц.
func RegisterText(texts map[string]string) {
	for k, v := range texts {
		englishText[k] = v
	}
}

// MessageKeys возвращает ключи всех уведомлений таблицы.
func MessageKeys() []string {
	keys := make([]string, 0, len(englishText))
	for k := range englishText {
		keys = append(keys, k)
	}
	return keys
}
