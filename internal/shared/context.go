package shared

import "context"

type companyContextKey struct{}

// ContextWithCompany stores the authenticated company id in context.
func ContextWithCompany(ctx context.Context, companyID int64) context.Context {
	return context.WithValue(ctx, companyContextKey{}, companyID)
}

// CompanyFromContext extracts the company id resolved by the tenant
// middleware. Returns ErrTenant when no company is present.
func CompanyFromContext(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(companyContextKey{}).(int64)
	if !ok || id == 0 {
		return 0, ErrTenant
	}
	return id, nil
}
