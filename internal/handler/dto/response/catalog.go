package response

import (
	"time"

	"storefront-api/internal/usecase/queries"
)

type ProductListResponse struct {
	Success  bool                   `json:"success"`
	Products []*queries.ProductView `json:"products"`
}

type SingleProductResponse struct {
	Success bool                 `json:"success"`
	Product *queries.ProductView `json:"product"`
}

type CategoryListResponse struct {
	Success    bool                    `json:"success"`
	Categories []*queries.CategoryView `json:"categories"`
}

type CollectionMetaResponse struct {
	Success         bool       `json:"success"`
	Count           int64      `json:"count"`
	LatestUpdatedAt *time.Time `json:"latestUpdatedAt"`
}

func FromProductViews(views []*queries.ProductView) ProductListResponse {
	if views == nil {
		views = []*queries.ProductView{}
	}
	return ProductListResponse{Success: true, Products: views}
}

func FromCategoryViews(views []*queries.CategoryView) CategoryListResponse {
	if views == nil {
		views = []*queries.CategoryView{}
	}
	return CategoryListResponse{Success: true, Categories: views}
}

func FromCollectionMeta(meta queries.CollectionMeta) CollectionMetaResponse {
	return CollectionMetaResponse{
		Success:         true,
		Count:           meta.Count,
		LatestUpdatedAt: meta.LatestUpdatedAt,
	}
}
