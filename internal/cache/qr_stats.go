package cache

import (
	"context"
	"strings"
)

const qrStatsAllCampaigns = "all"

// QRStatsKey cache key of a campaign's QR usage stats
func QRStatsKey(campaignID string) string {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		campaignID = qrStatsAllCampaigns
	}
	return "qr:stats:" + campaignID
}

// InvalidateQRStats drops the campaign entry and the global one
func InvalidateQRStats(ctx context.Context, campaignID string) error {
	return Del(ctx, QRStatsKey(campaignID), QRStatsKey(""))
}
