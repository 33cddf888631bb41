package models

// Message is a public contact-form submission.
type Message struct {
	BaseModel
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"message" validate:"required" gorm:"column:message"`
}

func CreateMessage(message *Message) error {
	return db.Create(message).Error
}

func FetchMessages() ([]Message, error) {
	messages := []Message{}

	err := db.Order("id desc").Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}
