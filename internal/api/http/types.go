package http

import (
	"encoding/json"
	"time"

	"github.com/traveltalk/server/internal/api/domain"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// --- auth ---

type loginRequest struct {
	Code     string `json:"code"`
	DeviceID string `json:"device_id"`
}

type userJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	User      userJSON  `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type validateResponse struct {
	Valid bool      `json:"valid"`
	User  *userJSON `json:"user,omitempty"`
}

// --- admin ---

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type adminValidateResponse struct {
	Valid bool `json:"valid"`
}

// --- invite codes ---

type codeUserJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}

type codeJSON struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	UsesRemaining *int           `json:"uses_remaining"`
	DeviceLimit   int            `json:"device_limit"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	LastUsedAt    *time.Time     `json:"last_used_at"`
	Users         []codeUserJSON `json:"users,omitempty"`
}

func toCodeJSON(c domain.InviteCode, users []domain.User) codeJSON {
	out := codeJSON{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Description:   c.Description,
		UsesRemaining: c.UsesRemaining,
		DeviceLimit:   c.DeviceLimit,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		LastUsedAt:    c.LastUsedAt,
	}
	for _, u := range users {
		out.Users = append(out.Users, codeUserJSON{
			ID:        u.ID,
			Name:      u.Name,
			DeviceID:  u.DeviceID,
			CreatedAt: u.CreatedAt,
		})
	}
	return out
}

type createCodeRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	UsesRemaining *int   `json:"uses_remaining"`
	DeviceLimit   int    `json:"device_limit"`
}

// updateCodeRequest distinguishes "uses_remaining absent" from
// "uses_remaining: null" (back to unlimited), hence the RawMessage.
type updateCodeRequest struct {
	ID            string          `json:"id"`
	Name          *string         `json:"name"`
	Description   *string         `json:"description"`
	DeviceLimit   *int            `json:"device_limit"`
	IsActive      *bool           `json:"is_active"`
	UsesRemaining json.RawMessage `json:"uses_remaining"`
}

// --- admin users ---

type adminUserJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DeviceID    string    `json:"device_id"`
	CreatedAt   time.Time `json:"created_at"`
	InviteCodes struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"invite_codes"`
}

type renameUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// --- history ---

type saveHistoryRequest struct {
	Mode           string         `json:"mode"`
	SourceLang     string         `json:"source_lang"`
	TargetLang     string         `json:"target_lang"`
	SourceText     string         `json:"source_text"`
	TranslatedText string         `json:"translated_text"`
	Metadata       map[string]any `json:"metadata"`
}

type translationJSON struct {
	ID             string         `json:"id"`
	Mode           string         `json:"mode"`
	SourceLang     string         `json:"source_lang"`
	TargetLang     string         `json:"target_lang"`
	SourceText     string         `json:"source_text"`
	TranslatedText string         `json:"translated_text"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
}

type historyListResponse struct {
	Translations []translationJSON `json:"translations"`
	Total        int               `json:"total"`
	Page         int               `json:"page"`
	Pages        int               `json:"pages"`
}

type dialogStartRequest struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type dialogStartResponse struct {
	SessionID string `json:"session_id"`
}

type dialogMessageJSON struct {
	ID             string    `json:"id,omitempty"`
	LangCode       string    `json:"lang_code"`
	Role           string    `json:"role"`
	Text           string    `json:"text"`
	DetectedGender *string   `json:"detected_gender"`
	SeqOrder       int       `json:"seq_order"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

type dialogMessagesRequest struct {
	DialogSessionID string              `json:"dialog_session_id"`
	Messages        []dialogMessageJSON `json:"messages"`
}

type dialogJSON struct {
	ID         string              `json:"id"`
	SourceLang string              `json:"source_lang"`
	TargetLang string              `json:"target_lang"`
	CreatedAt  time.Time           `json:"created_at"`
	Messages   []dialogMessageJSON `json:"messages"`
}

type dialogListResponse struct {
	Dialogs []dialogJSON `json:"dialogs"`
}

// --- phrasebook ---

type addPhraseRequest struct {
	Category   string `json:"category"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
}

type phraseJSON struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	SourceText string    `json:"source_text"`
	TargetText string    `json:"target_text"`
	CreatedAt  time.Time `json:"created_at"`
}

func toPhraseJSON(p domain.CustomPhrase) phraseJSON {
	return phraseJSON{
		ID:         p.ID,
		Category:   p.Category,
		SourceLang: p.SourceLang,
		TargetLang: p.TargetLang,
		SourceText: p.SourceText,
		TargetText: p.TargetText,
		CreatedAt:  p.CreatedAt,
	}
}

type deletePhraseRequest struct {
	ID string `json:"id"`
}

// --- proxies ---

type translateRequest struct {
	System    string          `json:"system"`
	Content   json.RawMessage `json:"content"`
	MaxTokens int             `json:"max_tokens"`
}

type translateResponse struct {
	Text string `json:"text"`
}

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type speechTokenResponse struct {
	Token  string `json:"token"`
	Region string `json:"region"`
}

type pronunciationRequest struct {
	ReferenceText string `json:"referenceText"`
	Language      string `json:"language"`
	Audio         string `json:"audio"` // base64 WAV
}
