package server

import (
	"fmt"
	"net/http"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/payment"
	"github.com/Luismorlan/rambagiza/wallet"
	"github.com/gin-gonic/gin"
)

const emptyWalletNotice = "Your wallet is empty, top it up to keep chatting"

func (s *Server) paymentData(c *gin.Context, user *model.User) (gin.H, error) {
	topUps, err := s.Wallet.TopUps(c.Request.Context(), user.Id)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"Tiers":     wallet.AllTiers,
		"StripeKey": s.StripePublishableKey,
		"Wallet":    user.Wallet,
		"TopUps":    topUps,
	}, nil
}

func (s *Server) Payment(c *gin.Context) {
	data, err := s.paymentData(c, currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "payment.html", data)
}

// renderPaymentPrompt is shown instead of storing a chat message when the
// author has no credit left.
func (s *Server) renderPaymentPrompt(c *gin.Context, user *model.User) {
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	data, err := s.paymentData(c, user)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.renderWithNotices(c, http.StatusPaymentRequired, "payment.html", data, emptyWalletNotice)
}

// Charge builds the handler of one tier's checkout form. The browser posts
// the card token created by Stripe checkout as stripeToken.
func (s *Server) Charge(tier wallet.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		updated, err := payment.ChargeAndCredit(c.Request.Context(), s.Gateway, s.Wallet, user, tier, c.PostForm("stripeToken"))
		switch err {
		case nil:
			s.redirectWithNotice(c, "/payment", fmt.Sprintf("%d messages added, your balance is %d", tier.Credit(), updated.Wallet))
			return
		case payment.ErrMissingToken:
			s.renderPaymentFailure(c, user, http.StatusBadRequest, err.Error())
			return
		}
		if payment.IsDeclined(err) {
			s.renderPaymentFailure(c, user, http.StatusPaymentRequired, payment.ErrChargeDeclined.Error())
			return
		}
		s.abortWithError(c, err)
	}
}

func (s *Server) renderPaymentFailure(c *gin.Context, user *model.User, status int, notice string) {
	data, err := s.paymentData(c, user)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.renderWithNotices(c, status, "payment.html", data, notice)
}
