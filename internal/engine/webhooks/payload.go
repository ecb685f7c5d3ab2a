package webhooks

import (
	"encoding/json"
	"fmt"
)

// Relay type names accepted by the public relay endpoint.
const (
	TypeContact     = "contact"
	TypeProcedure   = "demarche"
	TypeApplication = "candidature"
)

// Payload is one of Contact, Procedure or Application.
type Payload interface {
	Channel() Channel
	embed() Embed
}

type Contact struct {
	FirstName string `json:"firstname" validate:"required,max=100"`
	LastName  string `json:"lastname" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Subject   string `json:"subject" validate:"required,max=200"`
	Message   string `json:"message" validate:"required"`
}

func (Contact) Channel() Channel { return ChannelContact }

type Procedure struct {
	ProcedureType string `json:"procedure_type" validate:"required,max=100"`
	FirstName     string `json:"firstname" validate:"required,max=100"`
	LastName      string `json:"lastname" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"omitempty,max=30"`
	Address       string `json:"address" validate:"omitempty,max=300"`
	Details       string `json:"details"`
}

func (Procedure) Channel() Channel { return ChannelProcedure }

type Application struct {
	RPLastName   string `json:"rp_lastname" validate:"required,max=100"`
	RPFirstName  string `json:"rp_firstname" validate:"required,max=100"`
	RPAge        int    `json:"rp_age" validate:"required,min=1,max=150"`
	Position     string `json:"position" validate:"omitempty,max=200"`
	Motivation   string `json:"motivation" validate:"required"`
	Experience   string `json:"experience"`
	DiscordID    string `json:"discord_id" validate:"required,max=64"`
	Availability string `json:"availability" validate:"omitempty,max=300"`
}

func (Application) Channel() Channel { return ChannelRecruitment }

// DecodePayload maps a relay type name and its raw data onto a typed payload.
func DecodePayload(typ string, data json.RawMessage) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch typ {
	case TypeContact:
		var c Contact
		err = unmarshalData(data, &c)
		p = c
	case TypeProcedure:
		var pr Procedure
		err = unmarshalData(data, &pr)
		p = pr
	case TypeApplication:
		var a Application
		err = unmarshalData(data, &a)
		p = a
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", typ, err)
	}
	return p, nil
}

func unmarshalData(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// SamplePayload is the fixed message sent by the integration test button.
func SamplePayload(ch Channel) Payload {
	switch ch {
	case ChannelProcedure:
		return Procedure{
			ProcedureType: "Test",
			FirstName:     "Test",
			LastName:      "Intégration",
			Email:         "test@mairie.bc",
			Details:       "Message de test envoyé depuis le panneau d'administration.",
		}
	case ChannelRecruitment:
		return Application{
			RPLastName:  "Intégration",
			RPFirstName: "Test",
			RPAge:       30,
			Position:    "Test",
			Motivation:  "Message de test envoyé depuis le panneau d'administration.",
			DiscordID:   "000000000000000000",
		}
	default:
		return Contact{
			FirstName: "Test",
			LastName:  "Intégration",
			Email:     "test@mairie.bc",
			Subject:   "Test",
			Message:   "Message de test envoyé depuis le panneau d'administration.",
		}
	}
}
