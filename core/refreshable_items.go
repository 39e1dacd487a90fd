package core

import (
	"fmt"
	"strings"
)

// RefreshableItem is a data category the platform can refresh. Values are the
// literal wire names.
type RefreshableItem string

const (
	RefreshableItemCheckingAccounts       RefreshableItem = "CHECKING_ACCOUNTS"
	RefreshableItemCheckingTransactions   RefreshableItem = "CHECKING_TRANSACTIONS"
	RefreshableItemSavingAccounts         RefreshableItem = "SAVING_ACCOUNTS"
	RefreshableItemSavingTransactions     RefreshableItem = "SAVING_TRANSACTIONS"
	RefreshableItemCreditCardAccounts     RefreshableItem = "CREDITCARD_ACCOUNTS"
	RefreshableItemCreditCardTransactions RefreshableItem = "CREDITCARD_TRANSACTIONS"
	RefreshableItemLoanAccounts           RefreshableItem = "LOAN_ACCOUNTS"
	RefreshableItemLoanTransactions       RefreshableItem = "LOAN_TRANSACTIONS"
	RefreshableItemInvestmentAccounts     RefreshableItem = "INVESTMENT_ACCOUNTS"
	RefreshableItemInvestmentTransactions RefreshableItem = "INVESTMENT_TRANSACTIONS"
	RefreshableItemEInvoices              RefreshableItem = "EINVOICES"
	RefreshableItemTransferDestinations   RefreshableItem = "TRANSFER_DESTINATIONS"
	RefreshableItemIdentityData           RefreshableItem = "IDENTITY_DATA"
)

var canonicalRefreshableItems = []RefreshableItem{
	RefreshableItemCheckingAccounts,
	RefreshableItemCheckingTransactions,
	RefreshableItemSavingAccounts,
	RefreshableItemSavingTransactions,
	RefreshableItemCreditCardAccounts,
	RefreshableItemCreditCardTransactions,
	RefreshableItemLoanAccounts,
	RefreshableItemLoanTransactions,
	RefreshableItemInvestmentAccounts,
	RefreshableItemInvestmentTransactions,
	RefreshableItemEInvoices,
	RefreshableItemTransferDestinations,
	RefreshableItemIdentityData,
}

// RefreshableItems is an immutable set of items. The zero value means all
// items, as does a set containing every known item. Unknown names are dropped;
// a set whose names were all dropped is empty, not all, and the credentials
// service rejects it.
type RefreshableItems struct {
	items  map[RefreshableItem]struct{}
	scoped bool
}

// NewRefreshableItems builds a scoped set. Calling it without items yields all.
func NewRefreshableItems(items ...RefreshableItem) RefreshableItems {
	set := make(map[RefreshableItem]struct{}, len(items))
	for _, item := range items {
		normalized := RefreshableItem(strings.ToUpper(strings.TrimSpace(string(item))))
		if !isKnownRefreshableItem(normalized) {
			continue
		}
		set[normalized] = struct{}{}
	}
	return RefreshableItems{items: set, scoped: len(items) > 0}
}

func AllRefreshableItems() RefreshableItems {
	return RefreshableItems{}
}

func AccountRefreshableItems() RefreshableItems {
	return NewRefreshableItems(
		RefreshableItemCheckingAccounts,
		RefreshableItemSavingAccounts,
		RefreshableItemCreditCardAccounts,
		RefreshableItemLoanAccounts,
		RefreshableItemInvestmentAccounts,
	)
}

func TransactionRefreshableItems() RefreshableItems {
	return NewRefreshableItems(
		RefreshableItemCheckingTransactions,
		RefreshableItemSavingTransactions,
		RefreshableItemCreditCardTransactions,
		RefreshableItemLoanTransactions,
		RefreshableItemInvestmentTransactions,
	)
}

// ParseRefreshableItems accepts wire names; "all" or an empty input selects
// every item.
func ParseRefreshableItems(values []string) (RefreshableItems, error) {
	items := make([]RefreshableItem, 0, len(values))
	for _, value := range values {
		value = strings.ToUpper(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if value == "ALL" {
			return AllRefreshableItems(), nil
		}
		if !isKnownRefreshableItem(RefreshableItem(value)) {
			return RefreshableItems{}, fmt.Errorf("core: refreshable item %q is invalid", value)
		}
		items = append(items, RefreshableItem(value))
	}
	return NewRefreshableItems(items...), nil
}

func (r RefreshableItems) Union(other RefreshableItems) RefreshableItems {
	if r.IsAll() || other.IsAll() {
		return AllRefreshableItems()
	}
	merged := make(map[RefreshableItem]struct{}, len(r.items)+len(other.items))
	for item := range r.items {
		merged[item] = struct{}{}
	}
	for item := range other.items {
		merged[item] = struct{}{}
	}
	return RefreshableItems{items: merged, scoped: true}
}

func (r RefreshableItems) Contains(item RefreshableItem) bool {
	if r.IsAll() {
		return true
	}
	_, ok := r.items[item]
	return ok
}

func (r RefreshableItems) IsAll() bool {
	if len(r.items) == 0 {
		return !r.scoped
	}
	for _, item := range canonicalRefreshableItems {
		if _, ok := r.items[item]; !ok {
			return false
		}
	}
	return true
}

// IsEmpty reports a scoped set that selects nothing, typically because every
// name given was unknown.
func (r RefreshableItems) IsEmpty() bool {
	return r.scoped && len(r.items) == 0
}

// Strings lists the items in canonical order. An "all" set yields every
// known item.
func (r RefreshableItems) Strings() []string {
	if r.IsAll() {
		out := make([]string, 0, len(canonicalRefreshableItems))
		for _, item := range canonicalRefreshableItems {
			out = append(out, string(item))
		}
		return out
	}
	out := make([]string, 0, len(r.items))
	for _, item := range canonicalRefreshableItems {
		if _, ok := r.items[item]; ok {
			out = append(out, string(item))
		}
	}
	return out
}

// queryValues returns the values for the repeated "items" parameter, or nil
// when the scope is all.
func (r RefreshableItems) queryValues() []string {
	if r.IsAll() {
		return nil
	}
	return r.Strings()
}

func isKnownRefreshableItem(item RefreshableItem) bool {
	for _, known := range canonicalRefreshableItems {
		if known == item {
			return true
		}
	}
	return false
}
