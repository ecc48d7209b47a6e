package validators

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"marketplace/domain/config"
	"marketplace/domain/core/entities"
	"marketplace/domain/core/valueobjects"
	"marketplace/pkg/errors"
)

// ShopValidator validates shop business rules
type ShopValidator struct {
	cfg *config.DomainConfig
}

// NewShopValidator creates a shop validator; a nil config uses the defaults.
func NewShopValidator(cfg *config.DomainConfig) *ShopValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ShopValidator{cfg: cfg}
}

// Validate appends every rule the shop breaks to verrs.
func (v *ShopValidator) Validate(shop entities.Shop, verrs *errors.ValidationErrors) {
	v.validateBranch(shop.BranchInfo, verrs)
	v.validateRegion(shop.LatLon, verrs)
	v.validateSalesInfo(shop.SalesInfo, verrs)
	v.validateCategory(shop.CategoryInfo, verrs)
	v.validateDeliveryTips(shop.DeliveryTipPerDistanceList, verrs)

	if n := utf8.RuneCountInString(shop.ShopName); n > v.cfg.MaxShopNameLength {
		verrs.Add("shop_name", shop.ShopName,
			fmt.Sprintf("shop_name exceeds %d characters", v.cfg.MaxShopNameLength))
	}
	if n := utf8.RuneCountInString(shop.ShopDescription); n > v.cfg.MaxShopDescriptionLength {
		verrs.Add("shop_description", n,
			fmt.Sprintf("shop_description exceeds %d characters", v.cfg.MaxShopDescriptionLength))
	}
	if len(shop.ShopImageInfo.ImageList) > v.cfg.MaxShopImages {
		verrs.Add("shop_image_info.image_list", len(shop.ShopImageInfo.ImageList),
			fmt.Sprintf("at most %d images are allowed", v.cfg.MaxShopImages))
	}
}

// validateBranch enforces that a branch has a name and a main store does not.
func (v *ShopValidator) validateBranch(info entities.BranchInfo, verrs *errors.ValidationErrors) {
	name := ""
	if info.BranchName != nil {
		name = strings.TrimSpace(*info.BranchName)
	}

	switch {
	case info.IsBranch && name == "":
		verrs.AddCode(errors.CodeBranchInfoInvalid, "branch_info.branch_name", info.BranchName,
			"branch_name is required when is_branch is true")
	case !info.IsBranch && name != "":
		verrs.AddCode(errors.CodeBranchInfoInvalid, "branch_info.branch_name", name,
			"branch_name must be empty when is_branch is false")
	}
}

func (v *ShopValidator) validateRegion(pos entities.LatLon, verrs *errors.ValidationErrors) {
	if pos.Latitude < v.cfg.MinLatitude || pos.Latitude > v.cfg.MaxLatitude {
		verrs.AddCode(errors.CodeRegionInvalid, "lat_lon.latitude", pos.Latitude,
			fmt.Sprintf("latitude must be within [%.1f, %.1f]", v.cfg.MinLatitude, v.cfg.MaxLatitude))
	}
	if pos.Longitude < v.cfg.MinLongitude || pos.Longitude > v.cfg.MaxLongitude {
		verrs.AddCode(errors.CodeRegionInvalid, "lat_lon.longitude", pos.Longitude,
			fmt.Sprintf("longitude must be within [%.1f, %.1f]", v.cfg.MinLongitude, v.cfg.MaxLongitude))
	}
}

func (v *ShopValidator) validateSalesInfo(info entities.SalesInfo, verrs *errors.ValidationErrors) {
	if info.OpenTime != "" {
		if _, err := valueobjects.ParseClock(info.OpenTime); err != nil {
			verrs.Add("sales_info.open_time", info.OpenTime, err.Error())
		}
	}
	if info.CloseTime != "" {
		if _, err := valueobjects.ParseClock(info.CloseTime); err != nil {
			verrs.Add("sales_info.close_time", info.CloseTime, err.Error())
		}
	}

	seen := make(map[valueobjects.Weekday]bool, len(info.RestDays))
	for i, day := range info.RestDays {
		field := fmt.Sprintf("sales_info.rest_days[%d]", i)
		if !day.IsValid() {
			verrs.Add(field, day, "rest day must be a weekday name such as MONDAY")
			continue
		}
		if seen[day] {
			verrs.Add(field, day, "rest day is listed twice")
		}
		seen[day] = true
	}
}

func (v *ShopValidator) validateCategory(info entities.CategoryInfo, verrs *errors.ValidationErrors) {
	if !info.Category.IsValid() {
		verrs.Add("category_info.category", info.Category, "unknown category")
		return
	}
	for i, detail := range info.DetailCategory {
		if !info.Category.Allows(detail) {
			verrs.Add(fmt.Sprintf("category_info.detail_category[%d]", i), detail,
				fmt.Sprintf("detail category does not belong to %s", info.Category))
		}
	}
}

// validateDeliveryTips requires strictly increasing distances and
// non-negative tips.
func (v *ShopValidator) validateDeliveryTips(tips []entities.DeliveryTip, verrs *errors.ValidationErrors) {
	if len(tips) > v.cfg.MaxDeliveryTipTiers {
		verrs.Add("delivery_tip_per_distance_list", len(tips),
			fmt.Sprintf("at most %d delivery tip tiers are allowed", v.cfg.MaxDeliveryTipTiers))
	}

	prev := -1
	for i, tip := range tips {
		if tip.DistanceMeter <= prev {
			verrs.Add(fmt.Sprintf("delivery_tip_per_distance_list[%d].distance_meter", i), tip.DistanceMeter,
				"distances must be strictly increasing")
		}
		if tip.Tip < 0 {
			verrs.Add(fmt.Sprintf("delivery_tip_per_distance_list[%d].tip", i), tip.Tip,
				"tip cannot be negative")
		}
		prev = tip.DistanceMeter
	}
}
