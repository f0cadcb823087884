package util

func GetAppName() string {
	return "ISR Field"
}
