package sites

import (
	"strings"

	"github.com/rediwater/rediwater/internal/platform/httpx"
)

func (s *Service) validate(in SiteInput) (SiteInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return in, httpx.FromValidator(err)
	}
	return in, nil
}
