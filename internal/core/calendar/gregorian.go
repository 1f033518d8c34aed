package calendar

var gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isGregorianLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInGregorianMonth(year, month int) int {
	if month == 2 && isGregorianLeap(year) {
		return 29
	}
	return gregorianMonthDays[month-1]
}

// gregorianToAbs converts a Gregorian date to its Rata Die day number.
func gregorianToAbs(year, month, day int) int {
	y := year - 1
	abs := 365*y + y/4 - y/100 + y/400 + (367*month-362)/12 + day
	if month > 2 {
		if isGregorianLeap(year) {
			abs--
		} else {
			abs -= 2
		}
	}
	return abs
}

// absToGregorian is the inverse of gregorianToAbs.
func absToGregorian(abs int) (year, month, day int) {
	d0 := abs - 1
	n400 := d0 / 146097
	d1 := d0 % 146097
	n100 := d1 / 36524
	d2 := d1 % 36524
	n4 := d2 / 1461
	d3 := d2 % 1461
	n1 := d3 / 365

	year = 400*n400 + 100*n100 + 4*n4 + n1
	if n100 == 4 || n1 == 4 {
		// last day of a leap cycle
		month, day = 12, 31
		return year, month, day
	}
	year++

	prior := abs - gregorianToAbs(year, 1, 1)
	correction := 0
	if abs >= gregorianToAbs(year, 3, 1) {
		if isGregorianLeap(year) {
			correction = 1
		} else {
			correction = 2
		}
	}
	month = (12*(prior+correction) + 373) / 367
	day = abs - gregorianToAbs(year, month, 1) + 1
	return year, month, day
}
