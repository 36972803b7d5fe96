package weather

// Condition is a normalized high-level weather condition derived from the
// upstream precis code.
type Condition string

const (
	ConditionUnknown       Condition = "unknown"
	ConditionSunny         Condition = "sunny"
	ConditionPartlyCloudy  Condition = "partlycloudy"
	ConditionCloudy        Condition = "cloudy"
	ConditionRainy         Condition = "rainy"
	ConditionPouring       Condition = "pouring"
	ConditionLightning     Condition = "lightning"
	ConditionLightningRain Condition = "lightning-rainy"
	ConditionSnowy         Condition = "snowy"
	ConditionSnowyRainy    Condition = "snowy-rainy"
	ConditionWindy         Condition = "windy"
	ConditionClearNight    Condition = "clear-night"
	ConditionFog           Condition = "fog"
	ConditionHail          Condition = "hail"
	ConditionExceptional   Condition = "exceptional"
)

var precisConditions = map[string]Condition{
	"fine":                        ConditionSunny,
	"mostly-fine":                 ConditionSunny,
	"high-cloud":                  ConditionPartlyCloudy,
	"partly-cloudy":               ConditionPartlyCloudy,
	"mostly-cloudy":               ConditionCloudy,
	"cloudy":                      ConditionCloudy,
	"overcast":                    ConditionCloudy,
	"shower-or-two":               ConditionRainy,
	"chance-shower-fine":          ConditionRainy,
	"chance-shower-cloud":         ConditionRainy,
	"drizzle":                     ConditionRainy,
	"few-showers":                 ConditionRainy,
	"showers-rain":                ConditionRainy,
	"heavy-showers-rain":          ConditionPouring,
	"chance-thunderstorm-fine":    ConditionLightning,
	"chance-thunderstorm-cloud":   ConditionLightning,
	"chance-thunderstorm-showers": ConditionLightningRain,
	"thunderstorm":                ConditionLightningRain,
	"chance-snow-fine":            ConditionSnowy,
	"chance-snow-cloud":           ConditionSnowy,
	"snow-and-rain":               ConditionSnowyRainy,
	"light-snow":                  ConditionSnowy,
	"snow":                        ConditionSnowy,
	"heavy-snow":                  ConditionSnowy,
	"wind":                        ConditionWindy,
	"frost":                       ConditionClearNight,
	"fog":                         ConditionFog,
	"hail":                        ConditionHail,
	"dust":                        ConditionExceptional,
}

// ConditionForPrecis maps an upstream precis code to a Condition.
func ConditionForPrecis(code string) Condition {
	if c, ok := precisConditions[code]; ok {
		return c
	}
	return ConditionUnknown
}
