package core

import (
	"reflect"
	"testing"
)

func TestRefreshableItems_ZeroValueAndFullSetMeanAll(t *testing.T) {
	var zero RefreshableItems
	if !zero.IsAll() {
		t.Fatalf("expected zero value to mean all")
	}
	if zero.queryValues() != nil {
		t.Fatalf("expected all to omit items")
	}
	full := NewRefreshableItems(canonicalRefreshableItems...)
	if !full.IsAll() || full.queryValues() != nil {
		t.Fatalf("expected full set to mean all")
	}
	if len(zero.Strings()) != len(canonicalRefreshableItems) {
		t.Fatalf("expected all to list every item")
	}
}

func TestRefreshableItems_DropsUnknownAndKeepsCanonicalOrder(t *testing.T) {
	items := NewRefreshableItems("identity_data", "UNKNOWN_THING", RefreshableItemCheckingAccounts)
	want := []string{"CHECKING_ACCOUNTS", "IDENTITY_DATA"}
	if got := items.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if items.Contains(RefreshableItemLoanAccounts) {
		t.Fatalf("expected loan accounts to be excluded")
	}
	if !items.Contains(RefreshableItemIdentityData) {
		t.Fatalf("expected identity data to be included")
	}
}

func TestRefreshableItems_UnknownOnlyIsEmptyNotAll(t *testing.T) {
	items := NewRefreshableItems("CHEKING_ACCOUNTS")
	if items.IsAll() {
		t.Fatalf("expected a mistyped scope not to widen to all")
	}
	if !items.IsEmpty() {
		t.Fatalf("expected a mistyped scope to be empty")
	}
	if items.Contains(RefreshableItemCheckingAccounts) {
		t.Fatalf("expected empty scope to contain nothing")
	}
	if NewRefreshableItems().IsEmpty() || !NewRefreshableItems().IsAll() {
		t.Fatalf("expected no arguments to mean all")
	}
	if got := items.Union(AccountRefreshableItems()).Strings(); len(got) != 5 {
		t.Fatalf("expected union with accounts to keep five items, got %v", got)
	}
	if !items.Union(NewRefreshableItems("BOGUS")).IsEmpty() {
		t.Fatalf("expected union of empty scopes to stay empty")
	}
}

func TestRefreshableItems_Union(t *testing.T) {
	union := AccountRefreshableItems().Union(TransactionRefreshableItems())
	if union.IsAll() {
		t.Fatalf("expected accounts and transactions not to cover every item")
	}
	if len(union.Strings()) != 10 {
		t.Fatalf("expected ten items, got %v", union.Strings())
	}
	if !AccountRefreshableItems().Union(AllRefreshableItems()).IsAll() {
		t.Fatalf("expected union with all to be all")
	}
}

func TestParseRefreshableItems(t *testing.T) {
	items, err := ParseRefreshableItems([]string{"checking_accounts", " SAVING_ACCOUNTS "})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := items.Strings(); !reflect.DeepEqual(got, []string{"CHECKING_ACCOUNTS", "SAVING_ACCOUNTS"}) {
		t.Fatalf("unexpected items %v", got)
	}
	all, err := ParseRefreshableItems([]string{"all"})
	if err != nil || !all.IsAll() {
		t.Fatalf("expected all, got %v/%v", all.Strings(), err)
	}
	if _, err := ParseRefreshableItems([]string{"BOGUS"}); err == nil {
		t.Fatalf("expected unknown item to fail")
	}
}
