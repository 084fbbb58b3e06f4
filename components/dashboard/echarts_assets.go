package dashboard

import (
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsHost is the public go-echarts asset bucket.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// EnvEChartsCDN overrides the assets host (self-hosted bucket or CDN).
	EnvEChartsCDN = "GLANCE_ECHARTS_CDN"
)

// EChartsAssetsHost returns the configured host, then GLANCE_ECHARTS_CDN,
// then the public default.
func EChartsAssetsHost(configured string) string {
	if host := strings.TrimSpace(configured); host != "" {
		return ensureTrailingSlash(host)
	}
	if host := strings.TrimSpace(os.Getenv(EnvEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHost
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
