package core

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

var credentialsKindWire = map[string]CredentialsKind{
	"PASSWORD":        CredentialsKindPassword,
	"MOBILE_BANKID":   CredentialsKindMobileBankID,
	"KEYFOB":          CredentialsKindKeyfob,
	"FRAUD":           CredentialsKindFraud,
	"THIRD_PARTY_APP": CredentialsKindThirdPartyAuthentication,
}

var credentialsStatusWire = map[string]CredentialsStatus{
	"CREATED":                                 CredentialsStatusCreated,
	"AUTHENTICATING":                          CredentialsStatusAuthenticating,
	"UPDATING":                                CredentialsStatusUpdating,
	"UPDATED":                                 CredentialsStatusUpdated,
	"TEMPORARY_ERROR":                         CredentialsStatusTemporaryError,
	"AUTHENTICATION_ERROR":                    CredentialsStatusAuthenticationError,
	"PERMANENT_ERROR":                         CredentialsStatusPermanentError,
	"AWAITING_MOBILE_BANKID_AUTHENTICATION":   CredentialsStatusAwaitingMobileBankIDAuthentication,
	"AWAITING_SUPPLEMENTAL_INFORMATION":       CredentialsStatusAwaitingSupplementalInformation,
	"DISABLED":                                CredentialsStatusDisabled,
	"AWAITING_THIRD_PARTY_APP_AUTHENTICATION": CredentialsStatusAwaitingThirdPartyAppAuthentication,
	"SESSION_EXPIRED":                         CredentialsStatusSessionExpired,
}

func normalizeWireEnum(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// CredentialsKindFromREST never fails: unrecognized values map to unknown.
func CredentialsKindFromREST(value string) CredentialsKind {
	if kind, ok := credentialsKindWire[normalizeWireEnum(value)]; ok {
		return kind
	}
	return CredentialsKindUnknown
}

func (k CredentialsKind) RESTValue() string {
	for wire, kind := range credentialsKindWire {
		if kind == k {
			return wire
		}
	}
	return "UNKNOWN"
}

// CredentialsStatusFromREST never fails: unrecognized values map to unknown.
func CredentialsStatusFromREST(value string) CredentialsStatus {
	if status, ok := credentialsStatusWire[normalizeWireEnum(value)]; ok {
		return status
	}
	return CredentialsStatusUnknown
}

func (s CredentialsStatus) RESTValue() string {
	for wire, status := range credentialsStatusWire {
		if status == s {
			return wire
		}
	}
	return "UNKNOWN"
}

// CredentialsFromREST converts a wire record. It is total; required field
// checks live in DecodeCredentials.
func CredentialsFromREST(rest RESTCredentials) Credentials {
	status := CredentialsStatusFromREST(rest.Status)
	credentials := Credentials{
		ID:                strings.TrimSpace(rest.ID),
		ProviderID:        strings.TrimSpace(rest.ProviderName),
		Kind:              CredentialsKindFromREST(rest.Type),
		Status:            status,
		StatusUpdated:     timeFromEpoch(rest.StatusUpdated),
		Updated:           timeFromEpoch(rest.Updated),
		Fields:            cloneStringMap(rest.Fields),
		SessionExpiryDate: timeFromEpoch(rest.SessionExpiryDate),
	}
	if rest.StatusPayload != nil {
		credentials.StatusPayload = *rest.StatusPayload
	}
	if status == CredentialsStatusAwaitingSupplementalInformation && len(rest.SupplementalInformation) > 0 {
		fields := make([]FieldSpecification, 0, len(rest.SupplementalInformation))
		for _, field := range rest.SupplementalInformation {
			fields = append(fields, FieldSpecificationFromREST(field))
		}
		credentials.SupplementalInformationFields = fields
	}
	if status == CredentialsStatusAwaitingThirdPartyAppAuthentication {
		credentials.ThirdPartyAppAuthentication = thirdPartyAppAuthenticationFromREST(rest.ThirdPartyAppAuthentication)
	}
	return credentials
}

// RESTFromCredentials is the inverse of CredentialsFromREST.
func RESTFromCredentials(credentials Credentials) RESTCredentials {
	rest := RESTCredentials{
		ID:                credentials.ID,
		ProviderName:      credentials.ProviderID,
		Type:              credentials.Kind.RESTValue(),
		Status:            credentials.Status.RESTValue(),
		StatusUpdated:     epochFromTime(credentials.StatusUpdated),
		Updated:           epochFromTime(credentials.Updated),
		Fields:            cloneStringMap(credentials.Fields),
		SessionExpiryDate: epochFromTime(credentials.SessionExpiryDate),
	}
	payload := credentials.StatusPayload
	rest.StatusPayload = &payload
	if len(credentials.SupplementalInformationFields) > 0 {
		fields := make(JSONStringList[RESTField], 0, len(credentials.SupplementalInformationFields))
		for _, field := range credentials.SupplementalInformationFields {
			fields = append(fields, RESTFieldFromSpecification(field))
		}
		rest.SupplementalInformation = fields
	}
	rest.ThirdPartyAppAuthentication = restFromThirdPartyAppAuthentication(credentials.ThirdPartyAppAuthentication)
	return rest
}

func FieldSpecificationFromREST(field RESTField) FieldSpecification {
	spec := FieldSpecification{
		Name:         field.Name,
		Description:  field.Description,
		Hint:         field.Hint,
		HelpText:     field.HelpText,
		InitialValue: field.Value,
		Pattern:      field.Pattern,
		PatternError: field.PatternError,
		MaxLength:    cloneIntPtr(field.MaxLength),
		MinLength:    cloneIntPtr(field.MinLength),
		Masked:       boolOrDefault(field.Masked, false),
		Numeric:      boolOrDefault(field.Numeric, false),
		Immutable:    boolOrDefault(field.Immutable, false),
		Optional:     boolOrDefault(field.Optional, true),
	}
	return spec
}

func RESTFieldFromSpecification(spec FieldSpecification) RESTField {
	masked, numeric, immutable, optional := spec.Masked, spec.Numeric, spec.Immutable, spec.Optional
	return RESTField{
		Name:         spec.Name,
		Description:  spec.Description,
		Hint:         spec.Hint,
		HelpText:     spec.HelpText,
		Value:        spec.InitialValue,
		Pattern:      spec.Pattern,
		PatternError: spec.PatternError,
		MaxLength:    cloneIntPtr(spec.MaxLength),
		MinLength:    cloneIntPtr(spec.MinLength),
		Masked:       &masked,
		Numeric:      &numeric,
		Immutable:    &immutable,
		Optional:     &optional,
	}
}

func thirdPartyAppAuthenticationFromREST(rest *RESTThirdPartyAppAuthentication) *ThirdPartyAppAuthentication {
	if rest == nil {
		return nil
	}
	auth := &ThirdPartyAppAuthentication{
		DownloadTitle:   cloneStringPtr(rest.DownloadTitle),
		DownloadMessage: cloneStringPtr(rest.DownloadMessage),
		UpgradeTitle:    cloneStringPtr(rest.UpgradeTitle),
		UpgradeMessage:  cloneStringPtr(rest.UpgradeMessage),
	}
	if rest.IOS != nil {
		auth.AppStoreURL = parseOptionalURL(rest.IOS.AppStoreURL)
		auth.Scheme = cloneStringPtr(rest.IOS.Scheme)
		auth.DeepLinkURL = parseOptionalURL(rest.IOS.DeepLinkURL)
	}
	if rest.Android != nil {
		auth.Android = &AndroidAppAuthentication{
			PackageName:            rest.Android.PackageName,
			RequiredMinimumVersion: rest.Android.RequiredMinimumVersion,
			Intent:                 rest.Android.Intent,
		}
	}
	return auth
}

func restFromThirdPartyAppAuthentication(auth *ThirdPartyAppAuthentication) *RESTThirdPartyAppAuthentication {
	if auth == nil {
		return nil
	}
	rest := &RESTThirdPartyAppAuthentication{
		DownloadTitle:   cloneStringPtr(auth.DownloadTitle),
		DownloadMessage: cloneStringPtr(auth.DownloadMessage),
		UpgradeTitle:    cloneStringPtr(auth.UpgradeTitle),
		UpgradeMessage:  cloneStringPtr(auth.UpgradeMessage),
	}
	if auth.AppStoreURL != nil || auth.Scheme != nil || auth.DeepLinkURL != nil {
		rest.IOS = &RESTThirdPartyAppAuthenticationIOS{
			AppStoreURL: urlString(auth.AppStoreURL),
			Scheme:      cloneStringPtr(auth.Scheme),
			DeepLinkURL: urlString(auth.DeepLinkURL),
		}
	}
	if auth.Android != nil {
		rest.Android = &RESTThirdPartyAppAuthenticationAndroid{
			PackageName:            auth.Android.PackageName,
			RequiredMinimumVersion: auth.Android.RequiredMinimumVersion,
			Intent:                 auth.Android.Intent,
		}
	}
	return rest
}

// DecodeCredentials parses one credentials response body.
func DecodeCredentials(body []byte) (Credentials, error) {
	var rest RESTCredentials
	if err := json.Unmarshal(body, &rest); err != nil {
		return Credentials{}, decodeError(err, "core: decode credentials", nil)
	}
	if err := validateRESTCredentials(rest); err != nil {
		return Credentials{}, err
	}
	return CredentialsFromREST(rest), nil
}

// DecodeCredentialsList parses a credentials list response body. One malformed
// record fails the whole list.
func DecodeCredentialsList(body []byte) ([]Credentials, error) {
	var rest RESTCredentialsList
	if err := json.Unmarshal(body, &rest); err != nil {
		return nil, decodeError(err, "core: decode credentials list", nil)
	}
	out := make([]Credentials, 0, len(rest.Credentials))
	for index, record := range rest.Credentials {
		if err := validateRESTCredentials(record); err != nil {
			return nil, decodeError(err, "core: decode credentials list", map[string]any{"index": index})
		}
		out = append(out, CredentialsFromREST(record))
	}
	return out, nil
}

func validateRESTCredentials(rest RESTCredentials) error {
	if strings.TrimSpace(rest.ID) == "" {
		return decodeError(nil, "core: credentials id is missing", map[string]any{"field": "id"})
	}
	if strings.TrimSpace(rest.ProviderName) == "" {
		return decodeError(nil, "core: credentials providerName is missing", map[string]any{
			"field":          "providerName",
			"credentials_id": rest.ID,
		})
	}
	return nil
}

func timeFromEpoch(value *EpochMillis) *time.Time {
	if value == nil {
		return nil
	}
	t := value.Time()
	return &t
}

func epochFromTime(value *time.Time) *EpochMillis {
	if value == nil {
		return nil
	}
	epoch := NewEpochMillis(*value)
	return &epoch
}

func parseOptionalURL(value *string) *url.URL {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil
	}
	return parsed
}

func urlString(value *url.URL) *string {
	if value == nil {
		return nil
	}
	out := value.String()
	return &out
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}
