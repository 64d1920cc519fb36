package rules

import (
	"errors"
	"fmt"
)

// RulePackRequest selects the rule pack to evaluate. Path wins over an
// id/version pair, which wins over the repository default for the
// profile. With nothing configured the built-in pack is used.
type RulePackRequest struct {
	Path          string
	RulePackId    string
	Version       string
	Profile       string
	AllowUnsigned bool
}

// ResolveRulePack loads the rule pack described by the request from the
// user repository.
func ResolveRulePack(req RulePackRequest) (RulePack, RulePackSource, error) {
	if req.Path != "" {
		return resolveFromPath(req.Path)
	}
	repo, err := DefaultRepository()
	if err != nil {
		return RulePack{}, RulePackSource{}, err
	}
	return ResolveWithRepository(repo, req)
}

// ResolveWithRepository is ResolveRulePack against an explicit
// repository, used by tests and embedders.
func ResolveWithRepository(repo *Repository, req RulePackRequest) (RulePack, RulePackSource, error) {
	var source RulePackSource
	if req.Path != "" {
		return resolveFromPath(req.Path)
	}
	if repo == nil {
		return RulePack{}, source, errors.New("nil repository")
	}
	if req.RulePackId != "" {
		version := req.Version
		if version == "" {
			var err error
			version, err = repo.latestVersionFor(req.RulePackId)
			if err != nil {
				return RulePack{}, source, err
			}
			if version == "" {
				return RulePack{}, source, fmt.Errorf("rule pack %s is not installed", req.RulePackId)
			}
		}
		return repo.Load(req.RulePackId, version, req.AllowUnsigned)
	}
	if ref, ok, err := repo.DefaultForProfile(req.Profile); err != nil {
		return RulePack{}, source, err
	} else if ok {
		rp, src, err := repo.Load(ref.RulePackId, ref.Version, req.AllowUnsigned)
		if err != nil {
			return rp, src, fmt.Errorf("load default rule pack for profile %s: %w", req.Profile, err)
		}
		return rp, src, nil
	}
	return DefaultRulePack(req.Profile), source, nil
}

func resolveFromPath(path string) (RulePack, RulePackSource, error) {
	rp, err := LoadRulePack(path)
	if err != nil {
		return rp, RulePackSource{Path: path}, err
	}
	return rp, RulePackSource{Path: path}, ValidateRulePack(rp)
}
