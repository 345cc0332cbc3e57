package invkeeper

import (
	"context"
	"net/http"

	"github.com/everFinance/invkeeper/common"
	"github.com/everFinance/invkeeper/schema"
	"github.com/gin-gonic/gin"
)

func (k *Keeper) runAPI(port string) {
	k.registerRoutes(k.engine)
	if err := k.engine.Run(port); err != nil {
		panic(err)
	}
}

func (k *Keeper) registerRoutes(r *gin.Engine) {
	r.Use(common.CORSMiddleware())
	v1 := r.Group("/")
	{
		v1.GET("/info", k.getInfo)
		v1.GET("/object", k.getObject)
		v1.GET("/history", k.getHistory)
		v1.GET("/history/:digest", k.getTxRecord)
		v1.POST("/object/refresh", k.refresh)
		v1.DELETE("/object", k.clearObject)

		// actions submit transactions: one at a time, and away from scripts hammering the wallet
		tx := v1.Group("/")
		tx.Use(common.LimiterMiddleware(30, "M"), common.ExclusiveMiddleware(schema.ErrTxInFlight.Error()))
		{
			tx.POST("/object", k.action(k.coordinator.CreateObject))
			tx.POST("/object/add", k.action(k.coordinator.AddInventory))
			tx.POST("/object/remove", k.action(k.coordinator.RemoveInventory))
		}
	}
}

func (k *Keeper) getInfo(c *gin.Context) {
	info := schema.RespInfo{
		Network:   k.network.Name,
		RpcUrl:    k.network.Url,
		PackageId: k.network.PackageId,
	}
	if k.coordinator.account != nil {
		info.Account, _ = k.coordinator.account.CurrentAddress()
	}
	c.JSON(http.StatusOK, info)
}

func (k *Keeper) getObject(c *gin.Context) {
	c.JSON(http.StatusOK, k.coordinator.View())
}

func (k *Keeper) getHistory(c *gin.Context) {
	records, err := k.coordinator.History()
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, records)
}

func (k *Keeper) getTxRecord(c *gin.Context) {
	record, err := k.coordinator.TxRecord(c.Param("digest"))
	if err == schema.ErrNotExist {
		errorResponse(c, err.Error())
		return
	}
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, record)
}

func (k *Keeper) refresh(c *gin.Context) {
	if err := k.coordinator.Refresh(c.Request.Context()); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, k.coordinator.View())
}

func (k *Keeper) clearObject(c *gin.Context) {
	k.coordinator.ClearObject()
	c.JSON(http.StatusOK, k.coordinator.View())
}

// action runs one coordinator action; the request waits for its terminal outcome.
func (k *Keeper) action(run func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		// a submitted transaction is not aborted when the client goes away
		err := run(context.WithoutCancel(c.Request.Context()))
		resp := schema.RespAction{View: k.coordinator.View()}
		if err != nil {
			resp.Err = err.Error()
			c.JSON(http.StatusBadRequest, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, schema.RespErr{
		Err: err,
	})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{
		Err: err,
	})
}
