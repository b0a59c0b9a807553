package cache

func RecentErrorsKey() string {
	return "errors:recent"
}
