package dashboard

import (
	"os"
	"strings"
)

const (
	// defaultEChartsAssetsHost is where the ECharts runtime is loaded from unless overridden.
	defaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// envEChartsCDN overrides the default assets host (e.g., to point at a self-hosted bucket).
	envEChartsCDN = "CNAPP_DASHBOARD_ECHARTS_CDN"
)

// DefaultEChartsAssetsHost returns the assets host, respecting CNAPP_DASHBOARD_ECHARTS_CDN if set.
func DefaultEChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return defaultEChartsAssetsHost
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
