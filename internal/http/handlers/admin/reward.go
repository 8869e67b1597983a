package admin

import (
	"strings"

	handlershared "github.com/scanpesa/internal/http/handlers/shared"
	"github.com/scanpesa/internal/http/response"
	"github.com/scanpesa/internal/service"

	"github.com/gin-gonic/gin"
)

// DispatchRewardsRequest rewards to pay out
type DispatchRewardsRequest struct {
	RewardIDs []string `json:"reward_ids"`
}

// ListRewards paginated rewards; status must be pending, sent, failed or verified
func (h *Handler) ListRewards(c *gin.Context) {
	page, pageSize := normalizePagination(handlershared.QueryInt(c, "page", 1), handlershared.QueryInt(c, "page_size", 20))
	rewards, total, err := h.RewardService.List(service.RewardListInput{
		Status:   c.Query("status"),
		Phone:    strings.TrimSpace(c.Query("phone")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondRewardError(c, err, "error.reward_fetch_failed")
		return
	}
	response.SuccessWithPage(c, rewards, response.BuildPagination(page, pageSize, total))
}

// GetReward reward with its payment attempts
func (h *Handler) GetReward(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	reward, transactions, err := h.RewardService.Get(id)
	if err != nil {
		respondRewardError(c, err, "error.reward_fetch_failed")
		return
	}
	response.Success(c, gin.H{"reward": reward, "transactions": transactions})
}

// DispatchRewards pays the selected rewards synchronously, one result per reward
func (h *Handler) DispatchRewards(c *gin.Context) {
	var req DispatchRewardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	results, err := h.RewardService.Dispatch(c.Request.Context(), req.RewardIDs)
	if err != nil {
		respondRewardError(c, err, "error.reward_update_failed")
		return
	}
	requestLog(c).Infow("admin_reward_dispatch", append(auditFields(c), "rewards", len(results))...)
	response.Success(c, results)
}

// DispatchRewardsAsync queues one dispatch task per reward
func (h *Handler) DispatchRewardsAsync(c *gin.Context) {
	var req DispatchRewardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	queued, err := h.RewardService.EnqueueDispatch(req.RewardIDs)
	if err != nil {
		respondRewardError(c, err, "error.reward_update_failed")
		return
	}
	requestLog(c).Infow("admin_reward_dispatch_queued", append(auditFields(c), "queued", queued)...)
	response.Success(c, gin.H{"queued": queued})
}

// QueryRewardStatus asks the gateway for the outcome of the reward's in-flight payment
func (h *Handler) QueryRewardStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	txn, err := h.RewardService.QueryRewardStatus(c.Request.Context(), id)
	if err != nil {
		respondRewardError(c, err, "error.reward_status_query_failed")
		return
	}
	requestLog(c).Infow("admin_reward_status_query", append(auditFields(c), "reward_id", id, "transaction_id", txn.ID)...)
	response.Success(c, txn)
}
