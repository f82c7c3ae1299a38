package verification

import (
	"github.com/tendant/simple-verify/pkg/account"
	"github.com/tendant/simple-verify/pkg/config"
)

// EvaluatePolicy recomputes per-channel verified flags and the aggregate
// verified flag after an account change. It compares updated against
// original, clears the flag for every configured channel whose value
// changed, then folds the flags per the configured criteria when auto
// update is enabled. The input accounts are not mutated; the result is a
// copy of updated. original may be nil for a newly created account.
func EvaluatePolicy(original, updated *account.Account, cfg *config.VerificationConfig) *account.Account {
	result := updated.Clone()

	for key := range cfg.Keys {
		value := result.ChannelValue(key)
		if value == "" {
			result.SetChannelVerified(key, false)
			continue
		}
		if original != nil && value != original.ChannelValue(key) {
			result.SetChannelVerified(key, false)
		}
	}

	if cfg.AutoUpdate {
		result.Verified = aggregateVerified(result, cfg)
	}
	return result
}

// aggregateVerified folds per-channel flags into the single verified flag.
// Flags for empty channel values are cleared before this runs, so only the
// flags matter here.
//
// "any" requires at least one verified configured channel. "all" requires
// every configured channel to be verified. A comma-list criteria requires
// exactly the named channels to be verified, other channels notwithstanding.
func aggregateVerified(acct *account.Account, cfg *config.VerificationConfig) bool {
	switch cfg.Criteria {
	case config.CriteriaAny:
		for key := range cfg.Keys {
			if acct.ChannelVerified(key) {
				return true
			}
		}
		return false
	case config.CriteriaAll:
		if len(cfg.Keys) == 0 {
			return false
		}
		for key := range cfg.Keys {
			if !acct.ChannelVerified(key) {
				return false
			}
		}
		return true
	default:
		wanted := cfg.CriteriaKeys()
		if len(wanted) == 0 {
			return false
		}
		for _, key := range wanted {
			if !acct.ChannelVerified(key) {
				return false
			}
		}
		return true
	}
}

// ChangedChannels returns the configured channel keys whose value differs
// between original and updated, in no particular order. A nil original
// treats every non-empty channel on updated as changed.
func ChangedChannels(original, updated *account.Account, cfg *config.VerificationConfig) []string {
	var changed []string
	for key := range cfg.Keys {
		value := updated.ChannelValue(key)
		if value == "" {
			continue
		}
		if original == nil || value != original.ChannelValue(key) {
			changed = append(changed, key)
		}
	}
	return changed
}
