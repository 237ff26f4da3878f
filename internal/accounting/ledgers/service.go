package ledgers

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Ledger, error) {
	return s.repo.List(ctx)
}

func (s *Service) Resolve(ctx context.Context, name, module string) (*Ledger, error) {
	return s.repo.ByNameModule(ctx, name, module)
}
