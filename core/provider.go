package core

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

type ProviderKind string

const (
	ProviderKindUnknown    ProviderKind = "unknown"
	ProviderKindBank       ProviderKind = "bank"
	ProviderKindCreditCard ProviderKind = "credit_card"
	ProviderKindBroker     ProviderKind = "broker"
	ProviderKindOther      ProviderKind = "other"
	ProviderKindTest       ProviderKind = "test"
)

type ProviderStatus string

const (
	ProviderStatusUnknown           ProviderStatus = "unknown"
	ProviderStatusEnabled           ProviderStatus = "enabled"
	ProviderStatusDisabled          ProviderStatus = "disabled"
	ProviderStatusTemporaryDisabled ProviderStatus = "temporary_disabled"
)

type ProviderAccessType string

const (
	ProviderAccessTypeUnknown     ProviderAccessType = "unknown"
	ProviderAccessTypeOpenBanking ProviderAccessType = "open_banking"
	ProviderAccessTypeOther       ProviderAccessType = "other"
)

type ProviderAuthenticationUserType string

const (
	ProviderAuthenticationUserTypeUnknown   ProviderAuthenticationUserType = "unknown"
	ProviderAuthenticationUserTypeBusiness  ProviderAuthenticationUserType = "business"
	ProviderAuthenticationUserTypePersonal  ProviderAuthenticationUserType = "personal"
	ProviderAuthenticationUserTypeCorporate ProviderAuthenticationUserType = "corporate"
)

// ProviderCapability values are the literal wire names.
type ProviderCapability string

const (
	ProviderCapabilityTransfers           ProviderCapability = "TRANSFERS"
	ProviderCapabilityMortgageAggregation ProviderCapability = "MORTGAGE_AGGREGATION"
	ProviderCapabilityCheckingAccounts    ProviderCapability = "CHECKING_ACCOUNTS"
	ProviderCapabilitySavingsAccounts     ProviderCapability = "SAVINGS_ACCOUNTS"
	ProviderCapabilityCreditCards         ProviderCapability = "CREDIT_CARDS"
	ProviderCapabilityInvestments         ProviderCapability = "INVESTMENTS"
	ProviderCapabilityLoans               ProviderCapability = "LOANS"
	ProviderCapabilityPayments            ProviderCapability = "PAYMENTS"
	ProviderCapabilityIdentityData        ProviderCapability = "IDENTITY_DATA"
	ProviderCapabilityEInvoices           ProviderCapability = "EINVOICES"
	ProviderCapabilityCreateBeneficiaries ProviderCapability = "CREATE_BENEFICIARIES"
	ProviderCapabilityListBeneficiaries   ProviderCapability = "LIST_BENEFICIARIES"
)

var knownProviderCapabilities = map[ProviderCapability]struct{}{
	ProviderCapabilityTransfers:           {},
	ProviderCapabilityMortgageAggregation: {},
	ProviderCapabilityCheckingAccounts:    {},
	ProviderCapabilitySavingsAccounts:     {},
	ProviderCapabilityCreditCards:         {},
	ProviderCapabilityInvestments:         {},
	ProviderCapabilityLoans:               {},
	ProviderCapabilityPayments:            {},
	ProviderCapabilityIdentityData:        {},
	ProviderCapabilityEInvoices:           {},
	ProviderCapabilityCreateBeneficiaries: {},
	ProviderCapabilityListBeneficiaries:   {},
}

type FinancialInstitution struct {
	ID   string
	Name string
}

type Provider struct {
	ID                     string
	DisplayName            string
	Kind                   ProviderKind
	Status                 ProviderStatus
	CredentialsKind        CredentialsKind
	HelpText               string
	IsPopular              bool
	Fields                 []FieldSpecification
	GroupDisplayName       string
	ImageURL               *url.URL
	DisplayDescription     string
	Capabilities           []ProviderCapability
	AccessType             ProviderAccessType
	AuthenticationUserType ProviderAuthenticationUserType
	MarketCode             string
	FinancialInstitution   FinancialInstitution
}

func (p Provider) HasCapability(capability ProviderCapability) bool {
	for _, candidate := range p.Capabilities {
		if candidate == capability {
			return true
		}
	}
	return false
}

// ProviderFilter narrows a provider listing. A blank Market lists the markets
// of the authenticated user.
type ProviderFilter struct {
	Market               string
	Capabilities         []ProviderCapability
	IncludeTestProviders bool
}

// CacheKey is stable for equal filters regardless of capability order.
func (f ProviderFilter) CacheKey() string {
	capabilities := make([]string, 0, len(f.Capabilities))
	for _, capability := range f.Capabilities {
		capabilities = append(capabilities, string(capability))
	}
	sort.Strings(capabilities)
	test := "live"
	if f.IncludeTestProviders {
		test = "test"
	}
	return strings.Join([]string{
		"providers",
		strings.ToUpper(strings.TrimSpace(f.Market)),
		strings.Join(capabilities, ","),
		test,
	}, ":")
}

type RESTProviders struct {
	Providers []RESTProvider `json:"providers"`
}

type RESTProviderImages struct {
	Icon   *string `json:"icon,omitempty"`
	Banner *string `json:"banner,omitempty"`
}

type RESTProvider struct {
	Name                     string                 `json:"name"`
	DisplayName              string                 `json:"displayName"`
	Type                     string                 `json:"type"`
	Status                   string                 `json:"status"`
	CredentialsType          string                 `json:"credentialsType"`
	PasswordHelpText         string                 `json:"passwordHelpText,omitempty"`
	Popular                  bool                   `json:"popular,omitempty"`
	Fields                   []RESTField            `json:"fields,omitempty"`
	GroupDisplayName         *string                `json:"groupDisplayName,omitempty"`
	Images                   *RESTProviderImages    `json:"images,omitempty"`
	DisplayDescription       *string                `json:"displayDescription,omitempty"`
	Capabilities             JSONStringList[string] `json:"capabilities,omitempty"`
	AccessType               string                 `json:"accessType,omitempty"`
	AuthenticationUserType   string                 `json:"authenticationUserType,omitempty"`
	Market                   string                 `json:"market,omitempty"`
	FinancialInstitutionID   string                 `json:"financialInstitutionId,omitempty"`
	FinancialInstitutionName string                 `json:"financialInstitutionName,omitempty"`
}

func ProviderFromREST(rest RESTProvider) Provider {
	provider := Provider{
		ID:                     strings.TrimSpace(rest.Name),
		DisplayName:            rest.DisplayName,
		Kind:                   providerKindFromREST(rest.Type),
		Status:                 providerStatusFromREST(rest.Status),
		CredentialsKind:        CredentialsKindFromREST(rest.CredentialsType),
		HelpText:               rest.PasswordHelpText,
		IsPopular:              rest.Popular,
		GroupDisplayName:       rest.DisplayName,
		AccessType:             providerAccessTypeFromREST(rest.AccessType),
		AuthenticationUserType: providerUserTypeFromREST(rest.AuthenticationUserType),
		MarketCode:             strings.ToUpper(strings.TrimSpace(rest.Market)),
		FinancialInstitution: FinancialInstitution{
			ID:   rest.FinancialInstitutionID,
			Name: rest.FinancialInstitutionName,
		},
	}
	if rest.GroupDisplayName != nil && strings.TrimSpace(*rest.GroupDisplayName) != "" {
		provider.GroupDisplayName = *rest.GroupDisplayName
	}
	if rest.DisplayDescription != nil {
		provider.DisplayDescription = *rest.DisplayDescription
	}
	if rest.Images != nil {
		provider.ImageURL = parseOptionalURL(rest.Images.Icon)
	}
	provider.Fields = make([]FieldSpecification, 0, len(rest.Fields))
	for _, field := range rest.Fields {
		provider.Fields = append(provider.Fields, FieldSpecificationFromREST(field))
	}
	provider.Capabilities = make([]ProviderCapability, 0, len(rest.Capabilities))
	for _, raw := range rest.Capabilities {
		capability := ProviderCapability(normalizeWireEnum(raw))
		if _, ok := knownProviderCapabilities[capability]; ok {
			provider.Capabilities = append(provider.Capabilities, capability)
		}
	}
	return provider
}

// DecodeProviders parses a provider list body, skipping records without a
// name.
func DecodeProviders(body []byte) ([]Provider, error) {
	var rest RESTProviders
	if err := json.Unmarshal(body, &rest); err != nil {
		return nil, decodeError(err, "core: decode providers", nil)
	}
	out := make([]Provider, 0, len(rest.Providers))
	for _, record := range rest.Providers {
		if strings.TrimSpace(record.Name) == "" {
			continue
		}
		out = append(out, ProviderFromREST(record))
	}
	return out, nil
}

func providerKindFromREST(value string) ProviderKind {
	switch normalizeWireEnum(value) {
	case "BANK":
		return ProviderKindBank
	case "CREDIT_CARD":
		return ProviderKindCreditCard
	case "BROKER":
		return ProviderKindBroker
	case "OTHER":
		return ProviderKindOther
	case "TEST":
		return ProviderKindTest
	default:
		return ProviderKindUnknown
	}
}

func providerStatusFromREST(value string) ProviderStatus {
	switch normalizeWireEnum(value) {
	case "ENABLED":
		return ProviderStatusEnabled
	case "DISABLED":
		return ProviderStatusDisabled
	case "TEMPORARY_DISABLED":
		return ProviderStatusTemporaryDisabled
	default:
		return ProviderStatusUnknown
	}
}

func providerAccessTypeFromREST(value string) ProviderAccessType {
	switch normalizeWireEnum(value) {
	case "OPEN_BANKING":
		return ProviderAccessTypeOpenBanking
	case "OTHER":
		return ProviderAccessTypeOther
	default:
		return ProviderAccessTypeUnknown
	}
}

func providerUserTypeFromREST(value string) ProviderAuthenticationUserType {
	switch normalizeWireEnum(value) {
	case "BUSINESS":
		return ProviderAuthenticationUserTypeBusiness
	case "PERSONAL":
		return ProviderAuthenticationUserTypePersonal
	case "CORPORATE":
		return ProviderAuthenticationUserTypeCorporate
	default:
		return ProviderAuthenticationUserTypeUnknown
	}
}
