package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sampahku/internal/services"
)

func sendTestMessageCmd() *cobra.Command {
	var phone, msg string

	cmd := &cobra.Command{
		Use:   "send-test-message",
		Short: "Send a WhatsApp message through WAHA",
		RunE: func(cmd *cobra.Command, _ []string) error {
			waha := services.NewWahaService(cfg.Waha)
			chatID := services.NormalizeChatID(phone)

			logger.Info("Sending test message", zap.String("chat_id", chatID))
			if err := waha.SendMessage(cmd.Context(), chatID, msg); err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Message sent successfully!")
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (e.g. 081234567890 or 6281234567890)")
	cmd.Flags().StringVar(&msg, "msg", "Pesan uji coba dari layanan iuran sampah", "Message body")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}
