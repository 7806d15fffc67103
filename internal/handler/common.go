package handler

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

const privateOnly = "Команды работают только в личной переписке"

// isPrivate returns true if current chat is private and false if group
func isPrivate(c tele.Context) (bool, error) {
	chat := c.Chat()
	if chat == nil {
		return false, nil
	}
	if chat.Type != "" {
		return chat.Type == tele.ChatPrivate, nil
	}
	full, err := c.Bot().ChatByID(chat.ID)
	if err != nil {
		return false, err
	}
	return full.Type == tele.ChatPrivate, nil
}

func formatHumanName(guest any) string {
	name := ""
	// guest is telegram user object
	user, ok := guest.(*tele.User)
	if user != nil && ok {
		if len(user.FirstName) > 0 {
			name = user.FirstName
			if len(user.LastName) > 0 {
				name += fmt.Sprintf(" %s", user.LastName)
			}
		}
		if len(user.Username) > 0 {
			name += fmt.Sprintf(" (@%s)", user.Username)
		}
	}
	// guest is telegram chat object
	chat, ok := guest.(*tele.Chat)
	if chat != nil && ok {
		if len(chat.Title) > 0 {
			name = fmt.Sprintf("'%s'", chat.Title)
		}
		if len(chat.Username) > 0 {
			name += fmt.Sprintf(" (@%s)", chat.Username)
		}
	}
	return strings.Trim(name, " ")
}
