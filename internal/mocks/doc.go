// Package mocks holds shared test doubles for the review API.
//
// MockReviewService is a testify mock used by the handler tests.
// MockJWTService uses function fields; NewOwnerJWTService returns one that
// accepts any token and authenticates as a fixed owner:
//
//	jwt := mocks.NewOwnerJWTService(ownerID)
//	svc := new(mocks.MockReviewService)
//	svc.On("Categories", mock.Anything, ownerID).Return([]string{"Vocabulary"}, nil)
package mocks
