package core

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

type CredentialsKind string

const (
	CredentialsKindUnknown                  CredentialsKind = "unknown"
	CredentialsKindPassword                 CredentialsKind = "password"
	CredentialsKindMobileBankID             CredentialsKind = "mobile_bank_id"
	CredentialsKindKeyfob                   CredentialsKind = "keyfob"
	CredentialsKindFraud                    CredentialsKind = "fraud"
	CredentialsKindThirdPartyAuthentication CredentialsKind = "third_party_authentication"
)

// SortOrder ranks kinds for display. It carries no business meaning.
func (k CredentialsKind) SortOrder() int {
	switch k {
	case CredentialsKindMobileBankID:
		return 1
	case CredentialsKindPassword:
		return 2
	case CredentialsKindThirdPartyAuthentication:
		return 3
	case CredentialsKindKeyfob:
		return 4
	case CredentialsKindFraud:
		return 5
	default:
		return 6
	}
}

type CredentialsStatus string

const (
	CredentialsStatusUnknown                             CredentialsStatus = "unknown"
	CredentialsStatusCreated                             CredentialsStatus = "created"
	CredentialsStatusAuthenticating                      CredentialsStatus = "authenticating"
	CredentialsStatusUpdating                            CredentialsStatus = "updating"
	CredentialsStatusUpdated                             CredentialsStatus = "updated"
	CredentialsStatusTemporaryError                      CredentialsStatus = "temporary_error"
	CredentialsStatusAuthenticationError                 CredentialsStatus = "authentication_error"
	CredentialsStatusPermanentError                      CredentialsStatus = "permanent_error"
	CredentialsStatusAwaitingMobileBankIDAuthentication  CredentialsStatus = "awaiting_mobile_bank_id_authentication"
	CredentialsStatusAwaitingSupplementalInformation     CredentialsStatus = "awaiting_supplemental_information"
	CredentialsStatusDisabled                            CredentialsStatus = "disabled"
	CredentialsStatusAwaitingThirdPartyAppAuthentication CredentialsStatus = "awaiting_third_party_app_authentication"
	CredentialsStatusSessionExpired                      CredentialsStatus = "session_expired"
)

// Credentials is a read-only snapshot of one user's link to a provider as
// last reported by the platform.
type Credentials struct {
	ID                            string
	ProviderID                    string
	Kind                          CredentialsKind
	Status                        CredentialsStatus
	StatusPayload                 string
	StatusUpdated                 *time.Time
	Updated                       *time.Time
	Fields                        map[string]string
	SupplementalInformationFields []FieldSpecification
	ThirdPartyAppAuthentication   *ThirdPartyAppAuthentication
	SessionExpiryDate             *time.Time
}

type ThirdPartyAppAuthentication struct {
	DownloadTitle   *string
	DownloadMessage *string
	UpgradeTitle    *string
	UpgradeMessage  *string
	AppStoreURL     *url.URL
	Scheme          *string
	DeepLinkURL     *url.URL
	Android         *AndroidAppAuthentication
}

type AndroidAppAuthentication struct {
	PackageName            string
	RequiredMinimumVersion int
	Intent                 string
}

func (a *ThirdPartyAppAuthentication) HasAutoStartToken() bool {
	if a == nil || a.DeepLinkURL == nil {
		return false
	}
	return strings.Contains(a.DeepLinkURL.RawQuery, "autostartToken")
}

type FieldSpecification struct {
	Name         string
	Description  string
	Hint         string
	HelpText     string
	InitialValue string
	Pattern      string
	PatternError string
	MaxLength    *int
	MinLength    *int
	Masked       bool
	Numeric      bool
	Immutable    bool
	Optional     bool
}

// SortCredentialsByKind returns a copy ordered by kind rank; ties keep their
// input order.
func SortCredentialsByKind(credentials []Credentials) []Credentials {
	sorted := make([]Credentials, len(credentials))
	copy(sorted, credentials)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kind.SortOrder() < sorted[j].Kind.SortOrder()
	})
	return sorted
}

func cloneStringMap(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
