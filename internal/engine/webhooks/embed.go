package webhooks

import (
	"strconv"
	"strings"
	"time"
)

const (
	MaxFieldValue = 1024
	maxTitle      = 256

	colorApplication = 0x3B82F6
	colorContact     = 0x10B981
	colorProcedure   = 0xF59E0B

	notSpecified = "Non spécifié"
)

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type Embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []EmbedField `json:"fields"`
	Footer    EmbedFooter  `json:"footer"`
	Timestamp string       `json:"timestamp"`
}

// Message is the body posted to a chat webhook.
type Message struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

// BuildEmbed renders p with its fixed title, color, field order and footer.
// Every field value is capped at MaxFieldValue characters.
func BuildEmbed(p Payload, at time.Time) Embed {
	e := p.embed()
	e.Title = truncate(e.Title, maxTitle)
	for i := range e.Fields {
		e.Fields[i].Value = truncate(e.Fields[i].Value, MaxFieldValue)
	}
	e.Timestamp = at.UTC().Format(time.RFC3339)
	return e
}

func (c Contact) embed() Embed {
	return Embed{
		Title: "📩 Nouveau Message - Formulaire de Contact",
		Color: colorContact,
		Fields: []EmbedField{
			{Name: "👤 Nom", Value: orDefault(fullName(c.FirstName, c.LastName), notSpecified), Inline: true},
			{Name: "📧 Email", Value: orDefault(c.Email, notSpecified), Inline: true},
			{Name: "📋 Sujet", Value: orDefault(c.Subject, notSpecified)},
			{Name: "💬 Message", Value: orDefault(c.Message, notSpecified)},
		},
		Footer: EmbedFooter{Text: "Secrétariat de la Mairie - Blaine County"},
	}
}

func (p Procedure) embed() Embed {
	return Embed{
		Title: "📑 Nouvelle Démarche : " + orDefault(p.ProcedureType, notSpecified),
		Color: colorProcedure,
		Fields: []EmbedField{
			{Name: "👤 Demandeur", Value: orDefault(fullName(p.FirstName, p.LastName), notSpecified), Inline: true},
			{Name: "📧 Email", Value: orDefault(p.Email, notSpecified), Inline: true},
			{Name: "📞 Téléphone", Value: orDefault(p.Phone, notSpecified), Inline: true},
			{Name: "🏠 Adresse", Value: orDefault(p.Address, "Non spécifiée")},
			{Name: "📝 Détails", Value: orDefault(p.Details, "Aucun détail fourni")},
		},
		Footer: EmbedFooter{Text: "Services Administratifs - Blaine County"},
	}
}

func (a Application) embed() Embed {
	age := notSpecified
	if a.RPAge > 0 {
		age = strconv.Itoa(a.RPAge)
	}
	return Embed{
		Title: "📋 Nouvelle Candidature - Mairie de Blaine County",
		Color: colorApplication,
		Fields: []EmbedField{
			{Name: "👤 Nom RP", Value: orDefault(a.RPLastName, notSpecified), Inline: true},
			{Name: "👤 Prénom RP", Value: orDefault(a.RPFirstName, notSpecified), Inline: true},
			{Name: "🎂 Âge RP", Value: age, Inline: true},
			{Name: "💼 Poste demandé", Value: orDefault(a.Position, notSpecified)},
			{Name: "💬 Motivation", Value: orDefault(a.Motivation, notSpecified)},
			{Name: "📜 Expérience RP", Value: orDefault(a.Experience, notSpecified)},
			{Name: "🎮 Discord ID", Value: orDefault(a.DiscordID, notSpecified), Inline: true},
			{Name: "📅 Disponibilités", Value: orDefault(a.Availability, "Non spécifiées"), Inline: true},
		},
		Footer: EmbedFooter{Text: "Département des Ressources Humaines - Blaine County"},
	}
}

func fullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
