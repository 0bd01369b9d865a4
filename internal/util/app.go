package util

func GetAppName() string {
	return "Signfy"
}
