package domain

import (
	"strings"

	"github.com/samber/lo"
)

// ProviderKind tells whether a provider is a bundler or a paymaster.
type ProviderKind string

const (
	ProviderKindBundler   ProviderKind = "bundler"
	ProviderKindPaymaster ProviderKind = "paymaster"
)

// Reliability is the advertised reliability tier of a provider.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

var reliabilityRanks = map[Reliability]int{
	ReliabilityHigh:   0,
	ReliabilityMedium: 1,
	ReliabilityLow:    2,
}

// Rank returns 0 for the most reliable tier. Unknown tiers rank last.
func (r Reliability) Rank() int {
	rank, ok := reliabilityRanks[r]
	if !ok {
		return len(reliabilityRanks)
	}
	return rank
}

// IsValid ...
func (r Reliability) IsValid() bool {
	_, ok := reliabilityRanks[r]
	return ok
}

// Sponsorship is the gas sponsorship mode of a paymaster.
type Sponsorship string

const (
	SponsorshipNone    Sponsorship = "none"
	SponsorshipFull    Sponsorship = "full"
	SponsorshipPartial Sponsorship = "partial"
	SponsorshipERC20   Sponsorship = "erc20"
)

// BundlerCapabilities ...
type BundlerCapabilities struct {
	SupportsUserOpHash    bool
	SupportsGasEstimation bool
}

// PaymasterCapabilities ...
type PaymasterCapabilities struct {
	Sponsorship Sponsorship
}

// ProviderConfig describes a bundler or a paymaster. Exactly the capability
// struct matching Kind is set.
type ProviderConfig struct {
	ID              string
	Kind            ProviderKind
	DisplayName     string
	Endpoint        string
	SupportedChains []int64
	Reliability     Reliability
	Recommended     bool
	Popular         bool
	Bundler         *BundlerCapabilities
	Paymaster       *PaymasterCapabilities
}

// NewBundlerProvider returns a validated bundler configuration.
func NewBundlerProvider(
	id, displayName, endpoint string, chains []int64,
	reliability Reliability, recommended, popular bool,
	capabilities BundlerCapabilities,
) (*ProviderConfig, error) {
	p := &ProviderConfig{
		ID:              id,
		Kind:            ProviderKindBundler,
		DisplayName:     displayName,
		Endpoint:        endpoint,
		SupportedChains: chains,
		Reliability:     reliability,
		Recommended:     recommended,
		Popular:         popular,
		Bundler:         &capabilities,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPaymasterProvider returns a validated paymaster configuration.
func NewPaymasterProvider(
	id, displayName, endpoint string, chains []int64,
	reliability Reliability, recommended, popular bool,
	capabilities PaymasterCapabilities,
) (*ProviderConfig, error) {
	p := &ProviderConfig{
		ID:              id,
		Kind:            ProviderKindPaymaster,
		DisplayName:     displayName,
		Endpoint:        endpoint,
		SupportedChains: chains,
		Reliability:     reliability,
		Recommended:     recommended,
		Popular:         popular,
		Paymaster:       &capabilities,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the configuration is consistent with its kind.
func (p ProviderConfig) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrProviderMissingID
	}
	if len(p.SupportedChains) <= 0 {
		return ErrProviderNoChains
	}
	if !p.Reliability.IsValid() {
		return ErrProviderInvalidReliability
	}

	switch p.Kind {
	case ProviderKindBundler:
		if p.Bundler == nil || p.Paymaster != nil {
			return ErrProviderMissingCapabilities
		}
	case ProviderKindPaymaster:
		if p.Paymaster == nil || p.Bundler != nil {
			return ErrProviderMissingCapabilities
		}
	default:
		return ErrProviderInvalidKind
	}
	return nil
}

// SupportsChain ...
func (p ProviderConfig) SupportsChain(chainID int64) bool {
	return lo.Contains(p.SupportedChains, chainID)
}

// SponsorsGas returns whether the paymaster pays for gas in some way.
func (p ProviderConfig) SponsorsGas() bool {
	return p.Paymaster != nil && p.Paymaster.Sponsorship != SponsorshipNone &&
		p.Paymaster.Sponsorship != ""
}
