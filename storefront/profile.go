package storefront

import (
	"context"

	"github.com/paperleaf/storefront-go/apperr"
	"github.com/paperleaf/storefront-go/cache"
)

// ProfileService serves the current user's profile. Its key-space is also
// invalidated by review mutations, because profile views surface review
// counts; see ReviewsService.Create.
type ProfileService struct {
	service
	policy cache.Policy
}

// NewProfileService constructs the profile service.
func NewProfileService(deps Deps) *ProfileService {
	return &ProfileService{
		service: service{deps: deps.normalize()},
		policy:  cache.DefaultDetailPolicy(),
	}
}

// Me fetches the current user's profile. Key: profile::detail. Requires
// an authenticated session.
func (s *ProfileService) Me(ctx context.Context) (Profile, error) {
	if s.deps.Rest.Token() == "" {
		return Profile{}, apperr.Unauthorized("sign in to see your profile")
	}
	key := s.deps.Serializer.Key(resourceProfile, qualifierDetail)
	return readThrough(ctx, &s.service, key, s.policy, func(ctx context.Context) (Profile, error) {
		var out Profile
		err := s.deps.Rest.Get(ctx, "/me", nil, &out)
		return out, err
	})
}

// ChangePassword submits a password change. The confirmation mismatch is
// a pure client-side failure; no request is sent for it.
func (s *ProfileService) ChangePassword(ctx context.Context, change PasswordChange) error {
	if err := change.Validate(); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "please check the password form"))
		return err
	}

	if err := s.deps.Rest.Put(ctx, "/me/password", change, nil); err != nil {
		s.deps.Notifier.Error(apperr.UserMessage(err, "could not change the password"))
		return err
	}

	s.invalidate(ctx, cache.Prefix(resourceProfile))
	s.deps.Notifier.Success("password changed")
	return nil
}
