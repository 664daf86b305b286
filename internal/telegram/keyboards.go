package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/PhotoSessionBot/internal/models"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📸 Новая фотосессия", "menu:new_session"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🖼 Картинка по описанию", "menu:prompt"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💎 Профиль", "menu:profile"),
		),
	)
}

// stylesKeyboard lays the catalog out two buttons per row.
func stylesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(sessionStyles); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(sessionStyles[i].Label, "style:"+sessionStyles[i].ID),
		}
		if i+1 < len(sessionStyles) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(sessionStyles[i+1].Label, "style:"+sessionStyles[i+1].ID))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Домой", "menu:home"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func facesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Готово", "faces:done"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Загрузить лицо", "faces:upload"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧑‍🦰 Выбрать сохранённое", "faces:list"),
		),
	)
}

func orientationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📱 Вертикальная", "orientation:"+string(models.OrientationVertical)),
			tgbotapi.NewInlineKeyboardButtonData("🖥 Горизонтальная", "orientation:"+string(models.OrientationHorizontal)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬜ Квадрат", "orientation:"+string(models.OrientationSquare)),
		),
	)
}

func savedFacesKeyboard(faces []models.Face) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, face := range faces {
		title := face.Title
		if title == "" {
			title = fmt.Sprintf("Лицо #%d", face.ID)
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ "+title, fmt.Sprintf("faces:use:%d", face.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+title, fmt.Sprintf("faces:delete:%d", face.ID)),
		})
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Домой", "menu:home"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func promptControlsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✨ Сделать как в примере", "prompt:default"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "menu:home"),
		),
	)
}

func promptTemplatesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎨 Портрет", "template:portrait"),
			tgbotapi.NewInlineKeyboardButtonData("🌅 Пейзаж", "template:landscape"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🪩 Постер", "template:poster"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Своя идея", "template:custom"),
		),
	)
}

func sessionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📸 Ещё фотосессия", "menu:new_session"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Поделиться", "session:share"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Домой", "menu:home"),
		),
	)
}

func profileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Пополнить баланс", "profile:topup"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧑‍🦰 Лица", "profile:faces"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Домой", "menu:home"),
		),
	)
}
