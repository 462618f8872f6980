package domain

import "fmt"

// Cents is a currency amount in minor units.
type Cents int64

// String renders the amount as dollars, e.g. "$5.50".
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
