package aggregates

import "testing"

func TestCatalogContracts(t *testing.T) {
	cases := []struct {
		contract   Contract
		atomic     bool
		validators bool
	}{
		{PublicationAggregateContract, true, true},
		{SchedulingAggregateContract, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.contract.Name, func(t *testing.T) {
			if got := tc.contract.Atomic(); got != tc.atomic {
				t.Fatalf("Atomic()=%v want %v", got, tc.atomic)
			}
			if tc.contract.RunsPublishValidators != tc.validators {
				t.Fatalf("RunsPublishValidators=%v want %v", tc.contract.RunsPublishValidators, tc.validators)
			}
		})
	}
}
