package calendar

// Persian (Solar Hijri) arithmetic after the Khayyam-era observational rules
// as tabulated by the widely used jalaali algorithm: leap years follow 33-year
// sub-cycles anchored at the break years below, and Farvardin 1 falls on the
// March equinox day computed from the accumulated leap drift against the
// Gregorian calendar.

// Years in which the 33-year leap pattern re-anchors.
var persianBreaks = []int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

const (
	persianMinYear = -60
	persianMaxYear = 3176

	// Rata Die of Gregorian March 1, year 1; used to locate Farvardin 1.
	persianEpochYearOffset = 621
)

type persianYearInfo struct {
	leap  int // 0 when the year is leap
	gy    int // Gregorian year containing Farvardin 1
	march int // Gregorian March day of Farvardin 1
}

func persianCalc(jy int) persianYearInfo {
	bl := len(persianBreaks)
	gy := jy + persianEpochYearOffset
	leapJ := -14
	jp := persianBreaks[0]
	jump := 0

	for i := 1; i < bl; i++ {
		jm := persianBreaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}
	n := jy - jp

	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}

	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march := 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap := ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}

	return persianYearInfo{leap: leap, gy: gy, march: march}
}

func isPersianLeap(year int) bool {
	return persianCalc(year).leap == 0
}

func daysInPersianMonth(year, month int) int {
	switch {
	case month <= 6:
		return 31
	case month <= 11:
		return 30
	}
	if isPersianLeap(year) {
		return 30
	}
	return 29
}

func persianToAbs(year, month, day int) int {
	info := persianCalc(year)
	abs := gregorianToAbs(info.gy, 3, info.march)
	abs += (month - 1) * 31
	if month > 6 {
		abs -= month - 7 // months 7.. are 30 days
	}
	return abs + day - 1
}

func absToPersian(abs int) (year, month, day int) {
	gy, _, _ := absToGregorian(abs)
	year = gy - persianEpochYearOffset
	info := persianCalc(year)
	firstOfYear := gregorianToAbs(info.gy, 3, info.march)

	k := abs - firstOfYear
	if k >= 0 {
		if k <= 185 {
			month = 1 + k/31
			day = k%31 + 1
			return year, month, day
		}
		k -= 186
	} else {
		year--
		k += 179
		if info.leap == 1 {
			k++
		}
	}
	month = 7 + k/30
	day = k%30 + 1
	return year, month, day
}
