package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EpochMillis is a wire timestamp in milliseconds since the Unix epoch.
type EpochMillis int64

func NewEpochMillis(t time.Time) EpochMillis {
	return EpochMillis(t.UnixMilli())
}

func (m EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

func (m *EpochMillis) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*m = EpochMillis(value)
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("core: epoch millis %q is invalid", raw)
	}
	*m = EpochMillis(int64(value))
	return nil
}

// JSONStringList decodes list fields the platform encodes as a JSON array
// inside a string. Native arrays are accepted too. Content that does not parse
// decodes to an empty list.
type JSONStringList[T any] []T

func (l *JSONStringList[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	payload := trimmed
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			*l = JSONStringList[T]{}
			return nil
		}
		payload = bytes.TrimSpace([]byte(inner))
		if len(payload) == 0 {
			*l = JSONStringList[T]{}
			return nil
		}
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		*l = JSONStringList[T]{}
		return nil
	}
	*l = JSONStringList[T](items)
	return nil
}

func (l JSONStringList[T]) MarshalJSON() ([]byte, error) {
	items := []T(l)
	if items == nil {
		items = []T{}
	}
	inner, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

type RESTCredentials struct {
	ID                          string                           `json:"id,omitempty"`
	ProviderName                string                           `json:"providerName,omitempty"`
	Type                        string                           `json:"type,omitempty"`
	Status                      string                           `json:"status,omitempty"`
	StatusPayload               *string                          `json:"statusPayload,omitempty"`
	StatusUpdated               *EpochMillis                     `json:"statusUpdated,omitempty"`
	Updated                     *EpochMillis                     `json:"updated,omitempty"`
	Fields                      map[string]string                `json:"fields,omitempty"`
	SupplementalInformation     JSONStringList[RESTField]        `json:"supplementalInformation,omitempty"`
	ThirdPartyAppAuthentication *RESTThirdPartyAppAuthentication `json:"thirdPartyAppAuthentication,omitempty"`
	SessionExpiryDate           *EpochMillis                     `json:"sessionExpiryDate,omitempty"`
	UserID                      string                           `json:"userId,omitempty"`
}

type RESTCredentialsList struct {
	Credentials []RESTCredentials `json:"credentials"`
}

type RESTField struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Hint         string `json:"hint,omitempty"`
	HelpText     string `json:"helpText,omitempty"`
	Value        string `json:"value,omitempty"`
	Pattern      string `json:"pattern,omitempty"`
	PatternError string `json:"patternError,omitempty"`
	MaxLength    *int   `json:"maxLength,omitempty"`
	MinLength    *int   `json:"minLength,omitempty"`
	Masked       *bool  `json:"masked,omitempty"`
	Numeric      *bool  `json:"numeric,omitempty"`
	Immutable    *bool  `json:"immutable,omitempty"`
	Optional     *bool  `json:"optional,omitempty"`
}

type RESTThirdPartyAppAuthentication struct {
	DownloadTitle   *string                                 `json:"downloadTitle,omitempty"`
	DownloadMessage *string                                 `json:"downloadMessage,omitempty"`
	UpgradeTitle    *string                                 `json:"upgradeTitle,omitempty"`
	UpgradeMessage  *string                                 `json:"upgradeMessage,omitempty"`
	IOS             *RESTThirdPartyAppAuthenticationIOS     `json:"ios,omitempty"`
	Android         *RESTThirdPartyAppAuthenticationAndroid `json:"android,omitempty"`
}

type RESTThirdPartyAppAuthenticationIOS struct {
	AppStoreURL *string `json:"appStoreUrl,omitempty"`
	Scheme      *string `json:"scheme,omitempty"`
	DeepLinkURL *string `json:"deepLinkUrl,omitempty"`
}

type RESTThirdPartyAppAuthenticationAndroid struct {
	PackageName            string `json:"packageName,omitempty"`
	RequiredMinimumVersion int    `json:"requiredMinimumVersion,omitempty"`
	Intent                 string `json:"intent,omitempty"`
}

type RESTCreateCredentialsRequest struct {
	ProviderName string            `json:"providerName"`
	Fields       map[string]string `json:"fields"`
	CallbackURI  string            `json:"callbackUri,omitempty"`
	AppURI       string            `json:"appUri,omitempty"`
}

type RESTSupplementalInformationRequest struct {
	Information map[string]string `json:"information"`
}

type RESTCallbackRelayedRequest struct {
	State      string            `json:"state"`
	Parameters map[string]string `json:"parameters"`
}
