/*
Copyright 2024 Vigil Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/vigilhq/vigil/model"
)

// ValidateMessage is the inline pre-send check request body.
type ValidateMessage struct {
	Message string `json:"message"`
}

func (v *ValidateMessage) ValidateRequest() error {
	return validation.ValidateStruct(v,
		validation.Field(&v.Message, validation.Required.Error("Message is required and must be a string")),
	)
}

// Trimmed returns the message body with surrounding whitespace removed.
func (v *ValidateMessage) Trimmed() string {
	return strings.TrimSpace(v.Message)
}

// ChatEvent is the webhook envelope delivered by the chat transport.
type ChatEvent struct {
	Type    string `json:"type"`
	Message struct {
		ID   string `json:"id"`
		Text string `json:"text"`
		Type string `json:"type"`
	} `json:"message"`
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	ChannelID   string `json:"channel_id"`
	ChannelType string `json:"channel_type"`
}

func (c *ChatEvent) ValidateEvent() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Type, validation.Required.Error("event type is required")),
	)
}

// ToMessage converts the event payload into the domain message shape.
func (c *ChatEvent) ToMessage() model.Message {
	return model.Message{
		ID:        c.Message.ID,
		Text:      c.Message.Text,
		Type:      c.Message.Type,
		AuthorID:  c.User.ID,
		ChannelID: c.ChannelID,
	}
}
