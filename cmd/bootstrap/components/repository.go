package components

import (
	repo_impl "storefront-api/internal/infra/repository"
	"storefront-api/internal/usecase/commands"
	"storefront-api/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewCatalogRepository,
			fx.As(new(queries.CatalogReadStore)),
		),
		fx.Annotate(
			repo_impl.NewCartRepository,
			fx.As(new(commands.CartRepository)),
		),
		fx.Annotate(
			repo_impl.NewCartRepository,
			fx.As(new(queries.CartReadStore)),
		),
	),
)
