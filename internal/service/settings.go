package service

import (
	"context"
	"strings"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/repository"
)

var themes = map[string]struct{}{"light": {}, "dark": {}}

func (s *Service) CompanyInfo(ctx context.Context) (domain.CompanyInfo, error) {
	var out domain.CompanyInfo
	err := s.view(ctx, func(st *domain.State) error {
		out = st.Company
		return nil
	})
	return out, err
}

// UpdateCompanyInfo edits the profile fields; the invoice counter is left alone.
func (s *Service) UpdateCompanyInfo(ctx context.Context, req domain.CompanyInfoRequest) (domain.CompanyInfo, error) {
	var out domain.CompanyInfo
	err := s.update(ctx, func(tx *repository.Tx) error {
		info := tx.State().Company
		info.Name = strings.TrimSpace(req.Name)
		info.Address = strings.TrimSpace(req.Address)
		info.Phone = strings.TrimSpace(req.Phone)
		tx.PutCompany(info)
		out = info
		return nil
	})
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	s.logAudit(ctx, "company_update", "company_info", "profile", "name", out.Name)
	return out, nil
}

func (s *Service) Preferences(ctx context.Context) (domain.Preferences, error) {
	var out domain.Preferences
	err := s.view(ctx, func(st *domain.State) error {
		out = st.Preferences
		return nil
	})
	return out, err
}

func (s *Service) UpdatePreferences(ctx context.Context, req domain.PreferencesRequest) (domain.Preferences, error) {
	var out domain.Preferences
	err := s.update(ctx, func(tx *repository.Tx) error {
		prefs := tx.State().Preferences
		if req.Theme != nil {
			theme := strings.ToLower(strings.TrimSpace(*req.Theme))
			if _, ok := themes[theme]; !ok {
				return apperr.Validation("theme must be light or dark")
			}
			prefs.Theme = theme
		}
		if req.Correction != nil {
			prefs.Correction = *req.Correction
		}
		tx.PutPreferences(prefs)
		out = prefs
		return nil
	})
	if err != nil {
		return domain.Preferences{}, err
	}
	s.logAudit(ctx, "preferences_update", "company_info", "preferences", "theme", out.Theme, "correction", out.Correction)
	return out, nil
}
