package commands

import (
	"time"

	"marketplace/domain/core/entities"
	"marketplace/domain/core/valueobjects"
)

// SalesInfoInput is the opening hours section of a shop request.
type SalesInfoInput struct {
	OpenTime  string                 `json:"open_time" validate:"required"`
	CloseTime string                 `json:"close_time" validate:"required"`
	RestDays  []valueobjects.Weekday `json:"rest_days"`
	IsOpen    *bool                  `json:"is_open" validate:"required"`
}

type AddressInput struct {
	LotNumberAddress string  `json:"lot_number_address" validate:"required"`
	RoadNameAddress  string  `json:"road_name_address" validate:"required"`
	DetailAddress    *string `json:"detail_address,omitempty"`
}

type LatLonInput struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

type ShopImageInput struct {
	MainImage string   `json:"main_image" validate:"required"`
	ImageList []string `json:"image_list"`
}

type BranchInput struct {
	IsBranch   *bool   `json:"is_branch" validate:"required"`
	BranchName *string `json:"branch_name,omitempty"`
}

type CategoryInput struct {
	Category       valueobjects.Category         `json:"category" validate:"required"`
	DetailCategory []valueobjects.DetailCategory `json:"detail_category"`
}

// CreateShopCommand registers a new shop. ShopID is optional; a UUID is
// generated when it is blank.
type CreateShopCommand struct {
	ShopID                     string                 `json:"shop_id,omitempty"`
	ShopName                   string                 `json:"shop_name" validate:"required"`
	SalesInfo                  *SalesInfoInput        `json:"sales_info" validate:"required"`
	AddressInfo                *AddressInput          `json:"address_info" validate:"required"`
	LatLon                     *LatLonInput           `json:"lat_lon" validate:"required"`
	ShopImageInfo              *ShopImageInput        `json:"shop_image_info" validate:"required"`
	BranchInfo                 *BranchInput           `json:"branch_info" validate:"required"`
	CategoryInfo               *CategoryInput         `json:"category_info" validate:"required"`
	DeliveryTipPerDistanceList []entities.DeliveryTip `json:"delivery_tip_per_distance_list" validate:"required"`
	ShopDescription            string                 `json:"shop_description"`
}

func (CreateShopCommand) CommandName() string { return "CreateShop" }

// ToShop builds the shop entity. Missing sections become zero values, so it
// is safe to call on a command that failed presence checks.
func (c CreateShopCommand) ToShop(shopID string, now time.Time) entities.Shop {
	shop := entities.Shop{
		ShopID:                     shopID,
		ShopName:                   c.ShopName,
		DeliveryTipPerDistanceList: c.DeliveryTipPerDistanceList,
		ShopDescription:            c.ShopDescription,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if s := c.SalesInfo; s != nil {
		shop.SalesInfo = entities.SalesInfo{
			OpenTime:  s.OpenTime,
			CloseTime: s.CloseTime,
			RestDays:  s.RestDays,
			IsOpen:    deref(s.IsOpen),
		}
	}
	if a := c.AddressInfo; a != nil {
		shop.AddressInfo = entities.AddressInfo{
			LotNumberAddress: a.LotNumberAddress,
			RoadNameAddress:  a.RoadNameAddress,
			DetailAddress:    a.DetailAddress,
		}
	}
	if p := c.LatLon; p != nil {
		shop.LatLon = entities.LatLon{Latitude: deref(p.Latitude), Longitude: deref(p.Longitude)}
	}
	if img := c.ShopImageInfo; img != nil {
		shop.ShopImageInfo = entities.ShopImageInfo{MainImage: img.MainImage, ImageList: img.ImageList}
	}
	if b := c.BranchInfo; b != nil {
		shop.BranchInfo = entities.BranchInfo{IsBranch: deref(b.IsBranch), BranchName: b.BranchName}
	}
	if cat := c.CategoryInfo; cat != nil {
		shop.CategoryInfo = entities.CategoryInfo{Category: cat.Category, DetailCategory: cat.DetailCategory}
	}
	return shop
}

// DeleteShopCommand soft-deletes a shop.
type DeleteShopCommand struct {
	ShopID string `json:"shop_id" validate:"required"`
}

func (DeleteShopCommand) CommandName() string { return "DeleteShop" }

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
