package exporter

import (
	"fmt"

	"github.com/spf13/cast"

	"zeptopulse/internal/dataset"
	"zeptopulse/pkg/contracts/domain"
)

// cellValue returns the typed cell for col so spreadsheet exports keep
// native number and boolean cells.
func cellValue(col dataset.Column, o *domain.Order) interface{} {
	switch col {
	case dataset.ColCustomerID:
		return o.CustomerID
	case dataset.ColProductID:
		return o.ProductID
	case dataset.ColCity:
		return o.City
	case dataset.ColProductCategory:
		return o.ProductCategory
	case dataset.ColGender:
		return o.Gender
	case dataset.ColAge:
		return o.Age
	case dataset.ColPrice:
		return o.Price
	case dataset.ColQuantity:
		return o.Quantity
	case dataset.ColDeliveryTimeMins:
		return o.DeliveryTimeMins
	case dataset.ColLoyaltyPoints:
		return o.LoyaltyPointsEarned
	case dataset.ColOrderTime:
		return o.OrderTime.Format("2006-01-02 15:04:05")
	case dataset.ColSLABreach:
		return o.SLABreach
	case dataset.ColSLAStatus:
		return string(o.SLAStatus)
	case dataset.ColAgeGroup:
		return string(o.AgeGroup)
	case dataset.ColHour:
		return o.Hour
	case dataset.ColDayOfWeek:
		return o.DayOfWeek.String()
	case dataset.ColTotalSpend:
		return o.TotalSpend
	}
	return ""
}

// formatCell renders one cell as text for CSV output. Money columns
// always carry two decimal places so values like 13.4 export as 13.40.
func formatCell(col dataset.Column, o *domain.Order) string {
	switch col {
	case dataset.ColPrice:
		return formatFloat(o.Price)
	case dataset.ColTotalSpend:
		return formatFloat(o.TotalSpend)
	default:
		return cast.ToString(cellValue(col, o))
	}
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
