// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/users/auth"
)

// Service implements profile and account administration use cases.
type Service struct {
	accountRepository AccountRepository
}

// NewService constructs a new account [Service].
func NewService(repository AccountRepository) *Service {
	return &Service{accountRepository: repository}
}

/*
GetProfile loads the authenticated user's own profile.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The profile entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	return service.accountRepository.FindByID(context, userID)
}

// UpdateInformationInput carries the self-service profile mutation.
// Nil fields are left untouched.
type UpdateInformationInput struct {
	Name  *string
	Email *string
	Photo *string
}

/*
UpdateInformation applies a partial update to the user's own profile.

Description: Only identity metadata moves through this path. Credential
changes are the auth service's job and are rejected at the handler.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInformationInput

Returns:
  - *auth.User: The updated profile
  - error: Conflict on duplicate name/email, or storage failures
*/
func (service *Service) UpdateInformation(context context.Context, userID string, input UpdateInformationInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Photo != nil {
		user.Photo = *input.Photo
	}

	if err := service.accountRepository.UpdateProfile(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

/*
Deactivate flags the authenticated user's account as inactive.

Description: The operation is idempotent and purely logical; no data is
destroyed. The account immediately disappears from every read path and
existing credentials stop resolving.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution failures
*/
func (service *Service) Deactivate(context context.Context, userID string) error {
	if err := service.accountRepository.Deactivate(context, userID); err != nil {
		return fmt.Errorf("account_service_deactivate_failed: %w", err)
	}
	return nil
}

/*
List returns a page of the user directory for administrators.

Parameters:
  - context: context.Context
  - descriptor: listquery.Descriptor

Returns:
  - []*auth.User: The requested page of users
  - error: Storage failures
*/
func (service *Service) List(context context.Context, descriptor listquery.Descriptor) ([]*auth.User, error) {
	return service.accountRepository.List(context, descriptor)
}

/*
GetUser loads a single user by ID for administrators.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *auth.User: The user entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetUser(context context.Context, id string) (*auth.User, error) {
	return service.accountRepository.FindByID(context, id)
}
